package export

// Options are the per-invocation export flags.
type Options struct {
	// Favicon adds favicon.ico and the touch/home-screen PNGs.
	Favicon bool
	// Website adds the AVIF output.
	Website bool
	// Public and TimestampDirs record how OutputDir was resolved.
	Public        bool
	TimestampDirs bool
	// OutputDir receives every file. It is created if missing.
	OutputDir string
}
