package main

// Exit codes returned by the CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (malformed config file)
	ExitDataError   = 3 // Data error (unreadable or unrecognized OCR payload)
	ExitEmptyInput  = 4 // Nothing to work from (no references, no seed)
)
