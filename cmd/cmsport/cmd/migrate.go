package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmsport/cmsport/internal/migrate"
	"github.com/cmsport/cmsport/internal/report"
	"github.com/cmsport/cmsport/internal/target"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate content from the source export to the target store",
	Long: `Migrate reads the source project's content export and writes every
document into the target store over its REST API.

The migration process follows these steps:
  1. Upload assets and build the asset identity map
  2. Create entities per type in dependency order, in concurrent batches
  3. Resolve deferred relationships once every endpoint exists
  4. Write the migration report

Individual document and relationship failures are recorded and skipped;
only pre-flight problems abort the run.

Example:
  cmsport migrate --config cmsport.yaml`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	checker := migrate.NewPreflightChecker(cfg, log)
	if err := checker.CheckMigrate(); err != nil {
		return fmt.Errorf("pre-flight check failed: %w", err)
	}

	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}

	client := target.NewClient(cfg.Target.URL, cfg.Target.Token)

	assets, err := migrate.NewAssetProvider(cfg.Target, client)
	if err != nil {
		return fmt.Errorf("failed to create asset provider: %w", err)
	}

	orch, err := migrate.NewOrchestrator(cfg, catalog, client, assets, log)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - completing current batch...")
		cancel()
	}()

	result, err := orch.Run(ctx)
	if err != nil {
		if err == context.Canceled {
			log.Warn("Migration cancelled by user")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	rep := report.NewMigrationReport(result)
	path, err := report.WriteJSON(cfg.Output.ReportDir, "migration", rep)
	if err != nil {
		return fmt.Errorf("failed to write migration report: %w", err)
	}
	log.Infow("Migration report written", "path", path)

	fmt.Println()
	report.PrintMigration(rep)

	if !result.Success {
		return fmt.Errorf("migration completed with %d errors", len(result.Errors))
	}

	return nil
}
