package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmsport/cmsport/internal/migrate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run pre-flight checks",
	Long: `Validate checks the configuration file and runs the pre-flight checks
each operation would run, without writing anything.

Checks performed:
  - Configuration syntax and required fields
  - Schema directory accessibility (conversion)
  - Export, asset index, and image paths (migration)
  - Target credential and asset provider selection (migration)

Example:
  cmsport validate --config cmsport.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Configuration Validation ===\n")
	fmt.Printf("Config file: %s\n\n", GetConfigFile())

	hasErrors := false
	checker := migrate.NewPreflightChecker(cfg, log)

	fmt.Println("--- Conversion checks ---")
	if err := checker.CheckConvert(); err != nil {
		fmt.Printf("❌ %v\n\n", err)
		hasErrors = true
	} else {
		fmt.Printf("✅ All checks passed\n\n")
	}

	fmt.Println("--- Migration checks ---")
	if err := checker.CheckMigrate(); err != nil {
		fmt.Printf("❌ %v\n\n", err)
		hasErrors = true
	} else {
		fmt.Printf("✅ All checks passed\n\n")
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more operations")
	}

	fmt.Println("=== Validation Complete ===")
	fmt.Println("✅ Configuration validated successfully")
	return nil
}
