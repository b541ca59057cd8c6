package config_test

import (
	"strings"
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/config"
)

func TestValidate_NegativeWorkerCount(t *testing.T) {
	t.Parallel()
	yaml := `
store:
  postgres_dsn: postgres://localhost/db
ingest:
  worker_count: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative worker_count, got nil")
	}
	if !strings.Contains(err.Error(), "worker_count") {
		t.Errorf("error should mention worker_count, got: %v", err)
	}
}

func TestValidate_NegativeDefaultLimit(t *testing.T) {
	t.Parallel()
	yaml := `
store:
  postgres_dsn: postgres://localhost/db
retrieval:
  default_limit: -5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative default_limit, got nil")
	}
}

func TestValidate_NegativeMaxFailures(t *testing.T) {
	t.Parallel()
	yaml := `
store:
  postgres_dsn: postgres://localhost/db
resilience:
  max_failures: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative max_failures, got nil")
	}
}

func TestValidate_MultipleErrorsJoined(t *testing.T) {
	t.Parallel()
	yaml := `
ingest:
  worker_count: -1
resilience:
  max_failures: -1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "postgres_dsn") || !strings.Contains(errStr, "worker_count") {
		t.Errorf("error should mention both postgres_dsn and worker_count, got: %v", errStr)
	}
}

func TestValidate_DefaultWeightsPassValidation(t *testing.T) {
	t.Parallel()
	yaml := `
store:
  postgres_dsn: postgres://localhost/db
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
