package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/utils"
	"github.com/tetherdb/schemadrift/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the generated schema structurally",
	Long: `Generate the expected schema from your declarations and check it for
structural problems: identifier rules, duplicate names, missing primary
keys, and dangling relations. No database connection is needed.

Examples:
  schemadrift validate
  schemadrift validate -f custom.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		decls, err := loadDeclarations()
		if err != nil {
			fmt.Printf("❌ Error loading declarations: %v\n", err)
			os.Exit(1)
		}

		opts := generator.DefaultOptions()
		opts.Logger = utils.NewLogger(verbose)
		expected := generator.Generate(decls, opts)

		result := validator.ValidateSchema(expected)

		red := color.New(color.FgRed, color.Bold)
		yellow := color.New(color.FgYellow)

		for _, e := range result.Errors {
			red.Printf("  ❌ %s\n", e.Message)
		}
		for _, w := range result.Warnings {
			yellow.Printf("  ⚠️  %s\n", w.Message)
		}

		if !result.Valid {
			fmt.Printf("\n❌ Schema is invalid: %d errors, %d warnings\n",
				len(result.Errors), len(result.Warnings))
			os.Exit(1)
		}
		fmt.Printf("✅ Schema is valid (%d tables, %d warnings)\n",
			len(expected.Tables), len(result.Warnings))
	},
}

func init() {
	validateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Declarations file (default: collections.yaml)")
	validateCmd.Flags().StringVar(&generateStructsDir, "structs", "", "Load declarations from Go structs in this directory")
}
