package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/database"
	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/utils"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Find tables with no declared collection",
	Long: `List catalog tables that belong to no declared collection and are
not known system tables.

Examples:
  schemadrift orphans
  schemadrift orphans -f custom.yaml
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

		declared := make([]string, 0, len(expected.Tables))
		for _, t := range expected.Tables {
			declared = append(declared, t.Name)
		}

		pool, err := database.GetPool()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		inspector := introspect.NewInspector(pool, logger)
		orphans, err := inspector.FindOrphanTables(context.Background(), declared)
		if err != nil {
			fmt.Printf("❌ Error finding orphan tables: %v\n", err)
			os.Exit(1)
		}

		if len(orphans) == 0 {
			fmt.Println("✅ No orphaned tables")
			return
		}

		fmt.Printf("⚠️  Found %d orphaned tables:\n", len(orphans))
		for _, name := range orphans {
			fmt.Println("   -", name)
		}
	},
}

func init() {
	orphansCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Declarations file (default: collections.yaml)")
	orphansCmd.Flags().StringVar(&generateStructsDir, "structs", "", "Load declarations from Go structs in this directory")
}
