// Package output provides JSON/styled output formatting and error handling.
package output

// Exit codes for the CLI process.
const (
	ExitOK        = 0 // Success
	ExitUsage     = 1 // Invalid arguments, flags, or date expressions
	ExitNotFound  = 2 // Resource not found (container, saved item)
	ExitAuth      = 3 // Missing or rejected Slack credential
	ExitRateLimit = 5 // Slack retry budget exhausted (429)
	ExitNetwork   = 6 // Connection/DNS/timeout error
	ExitAPI       = 7 // Slack returned an error
	ExitStore     = 8 // OmniFocus unreachable or scripting failure
)

// Error codes for the JSON envelope.
const (
	CodeUsage     = "usage"
	CodeNotFound  = "not_found"
	CodeAuth      = "auth_required"
	CodeRateLimit = "rate_limit"
	CodeNetwork   = "network"
	CodeAPI       = "api_error"
	CodeStore     = "store_unavailable"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth:
		return ExitAuth
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	case CodeStore:
		return ExitStore
	default:
		return ExitAPI
	}
}
