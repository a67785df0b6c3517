package cache

import "testing"

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"", "", true},
		{"", "x", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"summarize|*", "summarize|abc|opts:-", true},
		{"summarize|*", "sentiment|abc|opts:-", false},
		{"*|opts:-", "op|payload|opts:-", true},
		{"a*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "abd", false},
		{"a*b*c", "aXbYc", true},
		{"?", "x", true},
		{"?", "", false},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"[abc]", "b", true},
		{"[abc]", "d", false},
		{"[a-c]x", "bx", true},
		{"[a-c]x", "dx", false},
		{"[^abc]", "d", true},
		{"[^abc]", "a", false},
		{`\*`, "*", true},
		{`\*`, "x", false},
		{"[ab", "a", false}, // unterminated class
		{"key:*:suffix", "key:middle:suffix", true},
		{"key:*:suffix", "key:middle:other", false},
	}

	for _, tt := range tests {
		if got := globMatch(tt.pattern, tt.s); got != tt.want {
			t.Errorf("globMatch(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
		}
	}
}
