package cache

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{}
	ve.add("first problem")
	ve.add("second problem: %d", 42)

	msg := ve.Error()
	if !strings.Contains(msg, "first problem") || !strings.Contains(msg, "second problem: 42") {
		t.Errorf("Error() = %q, want both violations", msg)
	}
}

func TestValidationError_ErrOrNil(t *testing.T) {
	ve := &ValidationError{}
	if ve.errOrNil() != nil {
		t.Error("empty ValidationError should resolve to nil")
	}
	ve.add("x")
	if ve.errOrNil() == nil {
		t.Error("non-empty ValidationError resolved to nil")
	}
}

func TestErrorClassification(t *testing.T) {
	infra := &InfrastructureError{Op: "get", Err: errors.New("refused")}
	serial := &SerializationError{Op: "decode", Err: errors.New("bad gzip")}
	valid := &ValidationError{Violations: []string{"x"}}

	tests := []struct {
		name string
		err  error
		want ErrKind
	}{
		{"nil", nil, KindNone},
		{"infrastructure", infra, KindInfrastructure},
		{"wrapped infrastructure", fmt.Errorf("outer: %w", infra), KindInfrastructure},
		{"serialization", serial, KindSerialization},
		{"validation", valid, KindValidation},
		{"invalid key sentinel", ErrInvalidKey, KindValidation},
		{"key too long sentinel", ErrKeyTooLong, KindValidation},
		{"payload missing sentinel", ErrPayloadMissing, KindValidation},
		{"plain error", errors.New("other"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	infra := &InfrastructureError{Op: "set", Err: errors.New("timeout")}

	if !IsInfrastructure(infra) {
		t.Error("IsInfrastructure(infra) = false")
	}
	if IsInfrastructure(errors.New("plain")) {
		t.Error("IsInfrastructure(plain) = true")
	}
	if !errors.Is(infra, infra.Err) {
		t.Error("InfrastructureError does not unwrap to its cause")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty", "", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"valid", "summarize|text|opts:-", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
		{"newline", "a\nb", ErrInvalidKey},
		{"carriage return", "a\rb", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
