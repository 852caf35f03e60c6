package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmsport/cmsport/internal/migrate"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the conversion and migration plan without writing anything",
	Long: `Plan runs schema recovery, relationship inference, and conversion in
memory and displays what a migration would do.

The plan shows:
  - Recovered entity types and their target schema kinds
  - Classified relationships with their cardinalities
  - Entity migration order (referenced types first)
  - Effective processing configuration

Example:
  cmsport plan --config cmsport.yaml`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	printHeader("Migration Plan")

	fmt.Fprintln(outputWriter)
	printSection("Entity Types")
	for _, typeName := range catalog.TypeOrder {
		ts := catalog.Schemas[typeName]
		fmt.Fprintf(outputWriter, "  %s -> %s (%s, %d attributes)\n",
			typeName, ts.PluralName, ts.Kind, ts.Attributes.Len())
	}
	fmt.Fprintf(outputWriter, "  Components: %d\n", len(catalog.Components))

	fmt.Fprintln(outputWriter)
	printSection("Relationships")
	if len(catalog.Relations.Records) == 0 {
		fmt.Fprintln(outputWriter, "  (none)")
	}
	keys := make([]string, 0, len(catalog.Relations.Records))
	for key := range catalog.Relations.Records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rec := catalog.Relations.Records[key]
		fmt.Fprintf(outputWriter, "  • %s / %s (%s)\n",
			rec.SchemaA, rec.SchemaB, rec.Cardinality)
	}

	fmt.Fprintln(outputWriter)
	printSection("Migration Order (referenced types first)")
	for i, typeName := range migrate.MigrationOrder(catalog) {
		fmt.Fprintf(outputWriter, "  [%d] %s\n", i+1, typeName)
	}

	fmt.Fprintln(outputWriter)
	printSection("Configuration")
	fmt.Fprintf(outputWriter, "  Batch Size:            %d\n", cfg.Processing.BatchSize)
	fmt.Fprintf(outputWriter, "  Sleep Between Batches: %.1fs\n", cfg.Processing.SleepSeconds)
	fmt.Fprintf(outputWriter, "  Retry Count:           %d\n", cfg.Processing.RetryCount)
	fmt.Fprintf(outputWriter, "  Asset Provider:        %s\n", cfg.Target.AssetProvider)

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}
