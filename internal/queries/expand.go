package queries

import "strings"

// Expand substitutes ${NAME} and ${NAME:-default} in s.
//
// An unset ${NAME} becomes "". ${NAME:-default} uses default when NAME is
// unset or empty. A "${" without a closing brace is left alone.
func Expand(s string, getenv func(string) (string, bool)) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			break
		}
		end += start

		b.WriteString(s[:start])
		b.WriteString(lookup(s[start+2:end], getenv))
		s = s[end+1:]
	}
	b.WriteString(s)
	return b.String()
}

func lookup(expr string, getenv func(string) (string, bool)) string {
	name, def, hasDefault := strings.Cut(expr, ":-")
	value, ok := getenv(name)
	if hasDefault && (!ok || value == "") {
		return def
	}
	return value
}
