package overlay

import "strings"

// Intersects reports whether some concrete key matches both
// expressions: the expressions have the same number of "/"-separated
// segments and every segment pair matches, where "*" matches any
// single segment (including literal placeholder segments such as "{}").
func Intersects(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] == "*" || bs[i] == "*" {
			continue
		}
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
