package config

// RunnerConfig holds configuration for the workflow runner CLI.
type RunnerConfig struct {
	WorkRoot    string // root for per-job working directories (default "workernode")
	StoreRoot   string // local file store root (default "filestore")
	EngineBin   string // workflow engine binary (default "cwltool")
	MaxInFlight int    // maximum concurrently executing jobs
	LogLevel    string // log level: debug, info, warn, error
	LogFormat   string // log format: text, json
	DBPath      string // report database path (default "gridwe.db", ":memory:" for testing)
}

// DefaultRunnerConfig returns sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkRoot:    "workernode",
		StoreRoot:   "filestore",
		EngineBin:   "cwltool",
		MaxInFlight: 4,
		LogLevel:    "info",
		LogFormat:   "text",
		DBPath:      "gridwe.db",
	}
}
