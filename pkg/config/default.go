package config

const (
	DefaultThreads        = 50
	DefaultDelayMs        = 0
	DefaultTimeoutSeconds = 3
	DefaultUserAgent      = "Mozilla/5.0 (compatible; squidscan)"
)

// DefaultExcludeStatus are the codes that never count as an accessible port.
var DefaultExcludeStatus = []string{"000", "403", "503"}
