package orchestrator

// User-facing messages. Causes of transport failures are logged, never shown.
const (
	MessageMissingInput = "Please enter both the text and the security seed."
	MessageUnexpected   = "An unexpected error occurred. Check the console for details."
	MessageSeedFailed   = "Failed to generate a new seed. Please try again."
)
