// Package migrate orchestrates the two-phase content migration: assets,
// then entities in priority order, then deferred relationship resolution.
package migrate

import (
	"fmt"
	"os"

	"github.com/cmsport/cmsport/internal/config"
	"github.com/cmsport/cmsport/internal/logger"
)

// PreflightError represents a pre-flight check failure. Pre-flight problems
// are the only fatal, run-aborting condition: they fire before any writes.
type PreflightError struct {
	Check   string
	Message string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// PreflightChecker validates paths, credentials, and provider selection
// before a run starts.
type PreflightChecker struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewPreflightChecker creates a checker over the loaded configuration.
func NewPreflightChecker(cfg *config.Config, log *logger.Logger) *PreflightChecker {
	if log == nil {
		log = logger.NewDefault()
	}
	return &PreflightChecker{cfg: cfg, logger: log}
}

// CheckConvert validates everything schema conversion needs.
func (p *PreflightChecker) CheckConvert() error {
	p.logger.Info("Running pre-flight checks for conversion...")

	if err := p.cfg.Validate(); err != nil {
		return &PreflightError{Check: "CONFIG_CHECK", Message: err.Error()}
	}
	if err := p.requireDir("source.schema_dir", p.cfg.Source.SchemaDir); err != nil {
		return err
	}

	p.logger.Info("Pre-flight checks PASSED")
	return nil
}

// CheckMigrate validates everything a content-writing run needs.
func (p *PreflightChecker) CheckMigrate() error {
	p.logger.Info("Running pre-flight checks for migration...")

	if err := p.cfg.Validate(); err != nil {
		return &PreflightError{Check: "CONFIG_CHECK", Message: err.Error()}
	}
	if err := p.requireFile("source.export_path", p.cfg.Source.ExportPath); err != nil {
		return err
	}
	if err := p.requireFile("source.assets_index", p.cfg.Source.AssetsIndex); err != nil {
		return err
	}
	if err := p.requireDir("source.images_dir", p.cfg.Source.ImagesDir); err != nil {
		return err
	}
	if p.cfg.Target.Token == "" {
		return &PreflightError{
			Check:   "CREDENTIAL_CHECK",
			Message: "target.token is required for content-writing operations",
		}
	}
	switch p.cfg.Target.AssetProvider {
	case "local", "remote":
	default:
		return &PreflightError{
			Check:   "ASSET_PROVIDER_CHECK",
			Message: fmt.Sprintf("unknown asset provider %q", p.cfg.Target.AssetProvider),
		}
	}

	p.logger.Info("Pre-flight checks PASSED")
	return nil
}

func (p *PreflightChecker) requireFile(field, path string) error {
	if path == "" {
		return &PreflightError{Check: "PATH_CHECK", Message: field + " is required"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &PreflightError{Check: "PATH_CHECK", Message: fmt.Sprintf("%s: %v", field, err)}
	}
	if info.IsDir() {
		return &PreflightError{Check: "PATH_CHECK", Message: field + " must be a file"}
	}
	return nil
}

func (p *PreflightChecker) requireDir(field, path string) error {
	if path == "" {
		return &PreflightError{Check: "PATH_CHECK", Message: field + " is required"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &PreflightError{Check: "PATH_CHECK", Message: fmt.Sprintf("%s: %v", field, err)}
	}
	if !info.IsDir() {
		return &PreflightError{Check: "PATH_CHECK", Message: field + " must be a directory"}
	}
	return nil
}
