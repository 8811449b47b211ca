package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/database"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/utils"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <table>",
	Short: "Show the live structure of a table",
	Long: `Read the actual fields, indexes and constraints of a table from the
database catalog.

Examples:
  schemadrift inspect users
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tableName := args[0]

		pool, err := database.GetPool()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		inspector := introspect.NewInspector(pool, utils.NewLogger(verbose))
		ts, err := inspector.GetTableSchema(context.Background(), tableName)
		if err != nil {
			fmt.Printf("❌ Error inspecting table: %v\n", err)
			os.Exit(1)
		}

		if len(ts.Fields) == 0 {
			fmt.Printf("⚠️  Table %s has no columns (does it exist?)\n", tableName)
			return
		}

		fmt.Printf("📋 %s\n", tableName)
		fmt.Println("\n  Fields:")
		for _, f := range ts.Fields {
			line := fmt.Sprintf("    %-24s %s", f.Name, f.Type)
			if !f.Nullable {
				line += " NOT NULL"
			}
			if f.Default != nil {
				line += fmt.Sprintf(" DEFAULT %s", *f.Default)
			}
			fmt.Println(line)
		}

		if len(ts.Indexes) > 0 {
			fmt.Println("\n  Indexes:")
			for _, idx := range ts.Indexes {
				unique := ""
				if idx.Unique {
					unique = " UNIQUE"
				}
				fmt.Printf("    %-40s%s (%s)\n", idx.Name, unique, strings.Join(idx.Fields, ", "))
			}
		}

		if len(ts.Constraints) > 0 {
			fmt.Println("\n  Constraints:")
			for _, c := range ts.Constraints {
				fmt.Printf("    %-40s %s (%s)\n", c.Name, c.Type, strings.Join(c.Fields, ", "))
			}
		}
	},
}
