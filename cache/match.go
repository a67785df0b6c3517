package cache

// globMatch reports whether s matches a Redis-style glob pattern:
// '*' matches any sequence (including empty), '?' matches one byte,
// '[...]' matches a set or range of bytes, and '\' escapes the next byte.
// Both tiers invalidate with this same syntax.
func globMatch(pattern, s string) bool {
	p, i := 0, 0
	starP, starI := -1, 0
	for i < len(s) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				// Remember the star so we can backtrack.
				starP, starI = p, i
				p++
				continue
			case '?':
				p++
				i++
				continue
			case '[':
				if end, ok := matchClass(pattern, p, s[i]); ok {
					p = end
					i++
					continue
				}
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == s[i] {
					p += 2
					i++
					continue
				}
			default:
				if pattern[p] == s[i] {
					p++
					i++
					continue
				}
			}
		}
		// Mismatch: retry from the last star, consuming one more byte.
		if starP >= 0 {
			starI++
			p, i = starP+1, starI
			continue
		}
		return false
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass matches byte b against the class starting at pattern[start]
// (which must be '['). It returns the index just past the closing ']' and
// whether b matched.
func matchClass(pattern string, start int, b byte) (int, bool) {
	p := start + 1
	negate := false
	if p < len(pattern) && pattern[p] == '^' {
		negate = true
		p++
	}

	matched := false
	for p < len(pattern) && pattern[p] != ']' {
		if pattern[p] == '\\' && p+1 < len(pattern) {
			p++
		}
		lo := pattern[p]
		hi := lo
		if p+2 < len(pattern) && pattern[p+1] == '-' && pattern[p+2] != ']' {
			hi = pattern[p+2]
			p += 2
		}
		if lo <= b && b <= hi {
			matched = true
		}
		p++
	}
	if p >= len(pattern) {
		// Unterminated class never matches.
		return p, false
	}
	p++ // consume ']'
	if negate {
		matched = !matched
	}
	return p, matched
}
