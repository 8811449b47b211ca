package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/database"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/utils"
)

var statsCmd = &cobra.Command{
	Use:   "stats [table...]",
	Short: "Show row-count and storage statistics",
	Long: `Show estimated row counts and storage sizes per table. Row counts
come from planner statistics, not a live count.

Examples:
  schemadrift stats            # All tables
  schemadrift stats users
`,
	Run: func(cmd *cobra.Command, args []string) {
		pool, err := database.GetPool()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		inspector := introspect.NewInspector(pool, utils.NewLogger(verbose))

		tables := args
		if len(tables) == 0 {
			tables, err = inspector.ListTables(ctx)
			if err != nil {
				fmt.Printf("❌ Error listing tables: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Printf("%-32s %12s %12s %12s\n", "TABLE", "ROWS (est)", "TOTAL", "INDEXES")
		for _, table := range tables {
			stats, err := inspector.GetTableStats(ctx, table)
			if err != nil {
				fmt.Printf("❌ Error reading stats for %s: %v\n", table, err)
				os.Exit(1)
			}
			fmt.Printf("%-32s %12d %12s %12s\n",
				stats.TableName, stats.RowEstimate,
				formatBytes(stats.TotalSize), formatBytes(stats.IndexSize))
		}
	},
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
