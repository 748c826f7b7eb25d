package omnifocus

import "strings"

// escaper rewrites every character that could terminate an AppleScript
// string literal or smuggle in extra statements. Each dangerous character
// becomes its literal two-character escaped form.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// Escape makes s safe to embed inside a double-quoted AppleScript string.
// Every dynamic value crossing the scripting boundary must pass through
// here; attacker-controlled message text would otherwise be able to break
// out of the string literal and run arbitrary script.
func Escape(s string) string {
	return escaper.Replace(s)
}
