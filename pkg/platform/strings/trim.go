package strings

import "strings"

// TrimAll trims surrounding whitespace from each string in place.
func TrimAll(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// TrimEach trims surrounding whitespace from every element of ss in place.
func TrimEach(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}
