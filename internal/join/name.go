package join

// MaxNameLength is the longest participant name, in runes, accepted at the
// input boundary. ValidName does not enforce it.
const MaxNameLength = 40

// ValidName reports whether name may be submitted: any non-empty string.
func ValidName(name string) bool {
	return name != ""
}

// clampName truncates name to MaxNameLength runes.
func clampName(name string) string {
	n := 0
	for i := range name {
		if n == MaxNameLength {
			return name[:i]
		}
		n++
	}
	return name
}
