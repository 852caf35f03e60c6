package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmsport/cmsport/internal/config"
	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/inference"
	"github.com/cmsport/cmsport/internal/logger"
	"github.com/cmsport/cmsport/internal/migrate"
	"github.com/cmsport/cmsport/internal/report"
	"github.com/cmsport/cmsport/internal/schema"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Recover source schemas and generate target schema artifacts",
	Long: `Convert recovers entity type declarations from the source project's
schema definition files, infers relationship cardinalities, and writes the
target platform's schema artifacts.

The conversion process follows these steps:
  1. Recover type declarations from .js/.ts schema files
  2. Collect reference edges and classify each entity pair's cardinality
  3. Convert fields by priority (relations, slugs, arrays, objects, media)
  4. Write schema files, component files, and handler stubs

Example:
  cmsport convert --config cmsport.yaml`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	checker := migrate.NewPreflightChecker(cfg, log)
	if err := checker.CheckConvert(); err != nil {
		return fmt.Errorf("pre-flight check failed: %w", err)
	}

	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}

	writer := convert.NewWriter(cfg.Output.Dir, log)
	if err := writer.WriteAll(catalog); err != nil {
		return fmt.Errorf("failed to write schema artifacts: %w", err)
	}

	gen := report.NewGenerationReport(catalog)
	path, err := report.WriteJSON(cfg.Output.ReportDir, "generation", gen)
	if err != nil {
		return fmt.Errorf("failed to write generation report: %w", err)
	}
	log.Infow("Generation report written", "path", path)

	fmt.Println()
	report.PrintGeneration(gen)

	return nil
}

// loadConfigAndLogger loads the configuration, applies CLI overrides, and
// initializes the logger. Shared by every command that does real work.
func loadConfigAndLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.BatchSize, overrides.SleepSeconds)

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}

// buildCatalog runs the read-only pipeline stages: schema recovery,
// relationship inference, and schema conversion.
func buildCatalog(cfg *config.Config, log *logger.Logger) (*convert.Catalog, error) {
	recovery := schema.NewRecovery(log)
	decls, err := recovery.Recover(cfg.Source.SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("schema recovery failed: %w", err)
	}
	if len(decls) == 0 {
		return nil, fmt.Errorf("no type declarations found in %s", cfg.Source.SchemaDir)
	}

	edges := inference.CollectEdges(decls)
	relations := inference.Infer(edges, log)

	converter := convert.NewConverter(relations, log)
	return converter.Convert(decls), nil
}
