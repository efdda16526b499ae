package utils

import "regexp"

var unsafeObjectChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// SafeObjectName keeps letters, digits and dots of a client supplied file
// name and replaces everything else with an underscore.
func SafeObjectName(name string) string {
	return unsafeObjectChars.ReplaceAllString(name, "_")
}
