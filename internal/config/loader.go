package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills in zero-valued fields with the service's documented
// defaults, mirroring the standalone defaults each component otherwise
// applies on its own when constructed without a config file.
func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogLevelInfo
	}
	if cfg.Ingest.Pass1BatchSize <= 0 {
		cfg.Ingest.Pass1BatchSize = 5000
	}
	if cfg.Ingest.Pass2BatchSize <= 0 {
		cfg.Ingest.Pass2BatchSize = 1000
	}
	if cfg.Ingest.MaxAliasesPerLanguage <= 0 {
		cfg.Ingest.MaxAliasesPerLanguage = 8
	}
	if cfg.Ingest.MaxContextObjectIDs <= 0 {
		cfg.Ingest.MaxContextObjectIDs = 32
	}
	if len(cfg.Ingest.LanguageAllowlist) == 0 {
		cfg.Ingest.LanguageAllowlist = []string{"en"}
	}
	if cfg.Retrieval.DefaultLimit == 0 {
		cfg.Retrieval.DefaultLimit = 20
	}
	if cfg.Retrieval.FuzzyTopK <= 0 {
		cfg.Retrieval.FuzzyTopK = 20
	}
	if cfg.Retrieval.Weights == (WeightsConfig{}) {
		cfg.Retrieval.Weights = WeightsConfig{Name: 0.62, Context: 0.23, Type: 0.10, Prior: 0.05}
	}
	if cfg.Retrieval.ExactMatchBonus == 0 {
		cfg.Retrieval.ExactMatchBonus = 0.05
	}
	if cfg.Resilience.MaxFailures == 0 {
		cfg.Resilience.MaxFailures = 5
	}
	if cfg.Resilience.ResetTimeout <= 0 {
		cfg.Resilience.ResetTimeout = 10 * time.Second
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Store.PostgresDSN == "" {
		errs = append(errs, fmt.Errorf("store.postgres_dsn is required"))
	}

	if cfg.Ingest.WorkerCount < 0 {
		errs = append(errs, fmt.Errorf("ingest.worker_count must be >= 0"))
	}

	w := cfg.Retrieval.Weights
	if sum := w.Name + w.Context + w.Type + w.Prior; sum > 0 && (sum < 0.99 || sum > 1.01) {
		slog.Warn("retrieval.weights do not sum to ~1.0 — final scores will not be in [0,1]",
			"sum", sum)
	}
	if cfg.Retrieval.DefaultLimit < 0 {
		errs = append(errs, fmt.Errorf("retrieval.default_limit must be >= 0"))
	}

	if cfg.Resilience.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("resilience.max_failures must be >= 0"))
	}

	return errors.Join(errs...)
}
