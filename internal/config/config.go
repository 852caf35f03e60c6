// Package config provides configuration structures and loading for cmsport.
package config

// Config represents the complete application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Target     TargetConfig     `yaml:"target" mapstructure:"target"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig describes the export to migrate from: the NDJSON content
// dump, the declarative schema sources, and the asset index produced
// alongside the export.
type SourceConfig struct {
	ExportPath  string `yaml:"export_path" mapstructure:"export_path"`   // NDJSON content export
	SchemaDir   string `yaml:"schema_dir" mapstructure:"schema_dir"`     // schema definition sources
	AssetsIndex string `yaml:"assets_index" mapstructure:"assets_index"` // JSON asset index
	ImagesDir   string `yaml:"images_dir" mapstructure:"images_dir"`     // extracted asset files
}

// TargetConfig describes the destination content store.
type TargetConfig struct {
	URL           string `yaml:"url" mapstructure:"url"`
	Token         string `yaml:"token" mapstructure:"token"`
	AssetProvider string `yaml:"asset_provider" mapstructure:"asset_provider"` // "local" or "remote"
	UploadsDir    string `yaml:"uploads_dir" mapstructure:"uploads_dir"`       // used by the local provider
}

// OutputConfig describes where generated schema artifacts and reports are written.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	ReportDir string `yaml:"report_dir" mapstructure:"report_dir"`
}

// ProcessingConfig represents batch processing settings.
type ProcessingConfig struct {
	BatchSize    int     `yaml:"batch_size" mapstructure:"batch_size"`
	SleepSeconds float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
	RetryCount   int     `yaml:"retry_count" mapstructure:"retry_count"`
	RetryDelay   float64 `yaml:"retry_delay" mapstructure:"retry_delay"` // seconds
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			URL:           "http://localhost:1337",
			AssetProvider: "local",
		},
		Output: OutputConfig{
			Dir:       "out",
			ReportDir: ".",
		},
		Processing: ProcessingConfig{
			BatchSize:    10,
			SleepSeconds: 1,
			RetryCount:   3,
			RetryDelay:   2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
