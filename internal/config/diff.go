package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked — ingest settings
// and the store DSN require a process restart and are not diffed here.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	WeightsChanged bool
	NewWeights     WeightsConfig

	DefaultLimitChanged bool
	NewDefaultLimit     int

	FuzzyTopKChanged bool
	NewFuzzyTopK     int
}

// Changed reports whether d represents any actual change.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.WeightsChanged || d.DefaultLimitChanged || d.FuzzyTopKChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Retrieval.Weights != new.Retrieval.Weights {
		d.WeightsChanged = true
		d.NewWeights = new.Retrieval.Weights
	}

	if old.Retrieval.DefaultLimit != new.Retrieval.DefaultLimit {
		d.DefaultLimitChanged = true
		d.NewDefaultLimit = new.Retrieval.DefaultLimit
	}

	if old.Retrieval.FuzzyTopK != new.Retrieval.FuzzyTopK {
		d.FuzzyTopKChanged = true
		d.NewFuzzyTopK = new.Retrieval.FuzzyTopK
	}

	return d
}
