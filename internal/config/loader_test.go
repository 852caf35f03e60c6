package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmsport.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
source:
  export_path: /data/export.ndjson
  schema_dir: /data/schemas
  assets_index: /data/assets.json
  images_dir: /data/images
target:
  url: http://cms.example.com
  token: secret
  asset_provider: remote
output:
  dir: generated
processing:
  batch_size: 5
  sleep_seconds: 0.25
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Source.ExportPath != "/data/export.ndjson" {
		t.Errorf("expected export_path '/data/export.ndjson', got %s", cfg.Source.ExportPath)
	}
	if cfg.Target.URL != "http://cms.example.com" {
		t.Errorf("expected target url 'http://cms.example.com', got %s", cfg.Target.URL)
	}
	if cfg.Target.AssetProvider != "remote" {
		t.Errorf("expected asset_provider 'remote', got %s", cfg.Target.AssetProvider)
	}
	if cfg.Output.Dir != "generated" {
		t.Errorf("expected output dir 'generated', got %s", cfg.Output.Dir)
	}
	if cfg.Processing.BatchSize != 5 {
		t.Errorf("expected batch_size 5, got %d", cfg.Processing.BatchSize)
	}
	if cfg.Processing.SleepSeconds != 0.25 {
		t.Errorf("expected sleep_seconds 0.25, got %f", cfg.Processing.SleepSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	// Unset fields keep defaults
	if cfg.Processing.RetryCount != 3 {
		t.Errorf("expected default retry_count 3, got %d", cfg.Processing.RetryCount)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("CMS_TOKEN", "env-token")
	t.Setenv("CMS_HOST", "cms.internal")

	path := writeConfigFile(t, `
target:
  url: http://${CMS_HOST}:1337
  token: ${CMS_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Target.Token != "env-token" {
		t.Errorf("expected token 'env-token', got %s", cfg.Target.Token)
	}
	if cfg.Target.URL != "http://cms.internal:1337" {
		t.Errorf("expected url 'http://cms.internal:1337', got %s", cfg.Target.URL)
	}
}

func TestLoadEnvSubstitutionMissingVar(t *testing.T) {
	path := writeConfigFile(t, `
target:
  token: ${CMSPORT_UNSET_VAR_FOR_TEST}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// Unknown variables pass through unchanged
	if cfg.Target.Token != "${CMSPORT_UNSET_VAR_FOR_TEST}" {
		t.Errorf("expected unresolved placeholder to pass through, got %s", cfg.Target.Token)
	}
}
