package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/database"
	"github.com/tetherdb/schemadrift/diff"
	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/utils"
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Report drift between declarations and the live database",
	Long: `Generate the expected schema from your declarations, read the actual
schema from the database catalog, and report every discrepancy.

Examples:
  schemadrift drift                 # Compare collections.yaml to the database
  schemadrift drift -f custom.yaml  # Custom declarations file
  schemadrift drift --structs ./models
`,
	Run: func(cmd *cobra.Command, args []string) {
		decls, err := loadDeclarations()
		if err != nil {
			fmt.Printf("❌ Error loading declarations: %v\n", err)
			os.Exit(1)
		}

		logger := utils.NewLogger(verbose)
		opts := generator.DefaultOptions()
		opts.Logger = logger
		expected := generator.Generate(decls, opts)

		pool, err := database.GetPool()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		inspector := introspect.NewInspector(pool, logger)

		tableNames, err := inspector.ListTables(ctx)
		if err != nil {
			fmt.Printf("❌ Error listing tables: %v\n", err)
			os.Exit(1)
		}

		var actual []introspect.TableSchema
		for _, name := range tableNames {
			ts, err := inspector.GetTableSchema(ctx, name)
			if err != nil {
				fmt.Printf("❌ Error inspecting table %s: %v\n", name, err)
				os.Exit(1)
			}
			actual = append(actual, *ts)
		}

		drifts := diff.Compare(expected, actual, opts.Mapper)
		if len(drifts) == 0 {
			fmt.Println("✅ No drift: database matches the declared schema")
			return
		}

		fmt.Printf("🔍 Schema Drift (%d findings)\n", len(drifts))
		fmt.Println(strings.Repeat("=", 40))
		printDrifts(drifts)
		os.Exit(1)
	},
}

func printDrifts(drifts []diff.Drift) {
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	for _, d := range drifts {
		switch d.Type {
		case diff.MissingTable, diff.MissingField, diff.MissingIndex, diff.MissingConstraint:
			red.Printf("  ➖ %s\n", d)
		case diff.ExtraTable, diff.ExtraField, diff.ExtraIndex, diff.ExtraConstraint:
			green.Printf("  ➕ %s\n", d)
		default:
			yellow.Printf("  ⚡ %s\n", d)
		}
	}
}

func init() {
	driftCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Declarations file (default: collections.yaml)")
	driftCmd.Flags().StringVar(&generateStructsDir, "structs", "", "Load declarations from Go structs in this directory")
}
