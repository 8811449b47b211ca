package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/audit"
	"github.com/tetherdb/schemadrift/database"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/utils"
)

var auditAll bool

var auditCmd = &cobra.Command{
	Use:   "audit [table...]",
	Short: "Audit live rows for constraint violations",
	Long: `Check live data against catalog-declared constraints: NULLs in
NOT NULL columns, duplicates under unique constraints, and dangling
foreign-key references. The audit is best-effort: a failing check is
reported as an issue and the remaining checks still run.

Examples:
  schemadrift audit users
  schemadrift audit users posts
  schemadrift audit --all
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && !auditAll {
			fmt.Println("❌ Provide table names or --all")
			os.Exit(1)
		}

		pool, err := database.GetPool()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		logger := utils.NewLogger(verbose)
		inspector := introspect.NewInspector(pool, logger)
		auditor := audit.NewAuditor(pool, inspector, logger)

		tables := args
		if auditAll {
			tables, err = inspector.ListTables(ctx)
			if err != nil {
				fmt.Printf("❌ Error listing tables: %v\n", err)
				os.Exit(1)
			}
		}

		red := color.New(color.FgRed, color.Bold)
		violations := false

		for _, table := range tables {
			report := auditor.CheckTableIntegrity(ctx, table)
			if len(report.Issues) == 0 {
				fmt.Printf("✅ %s: clean\n", table)
				continue
			}
			violations = violations || report.HasNullViolations ||
				report.HasUniqueViolations || report.HasForeignKeyViolations

			fmt.Printf("📋 %s:\n", table)
			for _, issue := range report.Issues {
				red.Printf("  ❌ %s\n", issue)
			}
		}

		if violations {
			os.Exit(1)
		}
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditAll, "all", false, "Audit every table in the working schema")
}
