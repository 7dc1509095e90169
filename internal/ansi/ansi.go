// Package ansi holds the ANSI escape codes used for line-oriented terminal
// output, plus a helper to apply them.
package ansi

import "strings"

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Yellow = "\033[33m"
	Green  = "\033[32m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

// Style wraps s in the given codes followed by Reset. With no codes s is
// returned unchanged.
func Style(s string, codes ...string) string {
	if len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + Reset
}
