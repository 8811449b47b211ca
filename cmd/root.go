package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "schemadrift",
	Short: "Schema reconciliation and integrity auditing for PostgreSQL",
	Long: `schemadrift keeps a declared data model and a live database schema
provably consistent. It derives an expected schema from collection
declarations, reads the actual schema from the catalog, reports drift
between the two, and audits live rows for constraint violations.

Examples:

  schemadrift init
  schemadrift generate
  schemadrift drift
  schemadrift audit users
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(driftCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
}
