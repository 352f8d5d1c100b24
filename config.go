package correlate

// Config holds configuration for the Registry.
type Config struct {
	// CaptureDrops controls whether silently-dropped events (unresolved
	// definition, missing correlation field, malformed payload) are
	// recorded in the drop log for inspection and replay.
	CaptureDrops bool

	// ReplayAttempts is the maximum number of delivery attempts when
	// replaying a drop log entry.
	ReplayAttempts int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CaptureDrops:   true,
		ReplayAttempts: 3,
	}
}
