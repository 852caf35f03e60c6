package report

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

const labelWidth = 24

// PrintGeneration writes the generation summary to the console.
func PrintGeneration(r *GenerationReport) {
	color.Bold.Println("Schema conversion summary")

	printRow("Entity schemas", fmt.Sprintf("%d", r.Schemas))
	printRow("Components", fmt.Sprintf("%d", r.Components))
	printRow("Singletons", fmt.Sprintf("%d", len(r.Singletons)))
	printRow("Relationships", fmt.Sprintf("%d", len(r.Relationships)))

	if len(r.Types) > 0 {
		fmt.Println()
		color.Bold.Println("Types")
		for _, t := range r.Types {
			detail := fmt.Sprintf("%s, %d attributes", t.Kind, t.Attributes)
			printRow("  "+t.Name, detail)
		}
	}

	if len(r.Relationships) > 0 {
		fmt.Println()
		color.Bold.Println("Relationships")
		for _, rel := range r.Relationships {
			pair := fmt.Sprintf("  %s / %s", rel.SchemaA, rel.SchemaB)
			printRow(pair, rel.Cardinality)
		}
	}
}

// PrintMigration writes the migration summary to the console.
func PrintMigration(r *MigrationReport) {
	color.Bold.Println("Migration summary")

	printRow("Duration", r.Duration)
	printCounters("Assets", r.Assets.Total, r.Assets.Completed, r.Assets.Failed)
	printCounters("Entities", r.Entities.Total, r.Entities.Completed, r.Entities.Failed)
	printCounters("Relationships", r.Relations.Total, r.Relations.Completed, r.Relations.Failed)

	if len(r.Errors) > 0 {
		fmt.Println()
		color.Bold.Println("Errors")
		for _, e := range r.Errors {
			color.Red.Printf("  [%s] %s: %s\n", e.Phase, e.ID, e.Message)
		}
	}

	fmt.Println()
	if r.Success {
		color.Green.Println("Migration completed without errors")
	} else {
		color.Yellow.Printf("Migration completed with %d errors\n", len(r.Errors))
	}
}

// printCounters renders one phase's counters, coloring the failure count.
func printCounters(label string, total, completed, failed int) {
	value := fmt.Sprintf("%d/%d completed", completed, total)
	fmt.Printf("%s %s", runewidth.FillRight(label, labelWidth), value)
	if failed > 0 {
		color.Red.Printf(", %d failed", failed)
	}
	fmt.Println()
}

// printRow renders one aligned label/value line. Padding is by display
// width so non-ASCII type names stay aligned.
func printRow(label, value string) {
	fmt.Printf("%s %s\n", runewidth.FillRight(label, labelWidth), value)
}
