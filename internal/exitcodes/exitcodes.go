package exitcodes

// Exit codes for distprune
// These codes form the operational contract with release scripts and CI
const (
	Success              = 0 // Successful execution
	InvalidConfig        = 2 // Configuration file invalid or missing
	SafetyViolation      = 3 // Safety validator blocked an operation
	RuntimeError         = 4 // Read or write of a prune target failed
	RemovalFailed        = 5 // A listed file could not be removed
	UnresolvedSignatures = 6 // --strict and at least one fragment was left in place
)
