package decu

import "strings"

// Expand substitutes $name and ${name} in tmpl with vars[name]. "$$" yields a literal "$".
// Placeholders naming an unknown variable and lone dollars are left as they are.
func Expand(tmpl string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			b.WriteByte(c)
			i++
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i += 2
		case next == '{':
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end < 0 || !isIdent(tmpl[i+2:i+2+end]) {
				b.WriteByte('$')
				i++
				continue
			}
			name := tmpl[i+2 : i+2+end]
			if v, ok := vars[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tmpl[i : i+3+end])
			}
			i += 3 + end
		case isIdentStart(next):
			j := i + 2
			for j < len(tmpl) && isIdentPart(tmpl[j]) {
				j++
			}
			name := tmpl[i+1 : j]
			if v, ok := vars[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tmpl[i:j])
			}
			i = j
		default:
			b.WriteByte('$')
			i++
		}
	}

	return b.String()
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
