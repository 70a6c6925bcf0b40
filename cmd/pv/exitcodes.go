package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable config, bad directories)
	ExitDataError    = 3 // Data error (run not found, malformed input)
	ExitBackendError = 4 // Backend unreachable or returned an error
	ExitAuthError    = 5 // Backend rejected the API key
)
