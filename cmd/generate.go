package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/loader"
	"github.com/tetherdb/schemadrift/utils"
)

var (
	generateFile           string
	generateStructsDir     string
	generateOutput         string
	generateContentVersion bool
	generateNoIndexes      bool
	generateNoConstraints  bool
	generateStringLength   int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the expected schema from collection declarations",
	Long: `Generate the expected relational schema from your declarations.

Examples:
  schemadrift generate                        # From collections.yaml
  schemadrift generate -f custom.yaml         # Custom declarations file
  schemadrift generate --structs ./models     # From Go structs
  schemadrift generate -o expected.yaml       # Write schema to a file
  schemadrift generate --content-version      # Version from a content checksum
`,
	Run: func(cmd *cobra.Command, args []string) {
		decls, err := loadDeclarations()
		if err != nil {
			fmt.Printf("❌ Error loading declarations: %v\n", err)
			os.Exit(1)
		}

		opts := generator.DefaultOptions()
		opts.Logger = utils.NewLogger(verbose)
		opts.ContentVersion = generateContentVersion
		opts.GenerateIndexes = !generateNoIndexes
		opts.GenerateConstraints = !generateNoConstraints
		if generateStringLength > 0 {
			opts.DefaultStringLength = generateStringLength
		}

		expected := generator.Generate(decls, opts)

		out, err := yaml.Marshal(expected)
		if err != nil {
			fmt.Printf("❌ Error marshalling schema: %v\n", err)
			os.Exit(1)
		}

		if generateOutput != "" {
			if err := os.WriteFile(generateOutput, out, 0644); err != nil {
				fmt.Printf("❌ Error writing %s: %v\n", generateOutput, err)
				os.Exit(1)
			}
			fmt.Printf("✅ Expected schema written to %s (%d tables, version %s)\n",
				generateOutput, len(expected.Tables), expected.Version)
			return
		}

		fmt.Print(string(out))
	},
}

// loadDeclarations picks the declaration source shared by generate,
// validate, drift and orphans.
func loadDeclarations() (loader.Declarations, error) {
	if generateStructsDir != "" {
		return loader.LoadDeclarationsFromStructs(generateStructsDir)
	}
	file := generateFile
	if file == "" {
		file = "collections.yaml"
	}
	return loader.LoadDeclarationsFromYAML(file)
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Declarations file (default: collections.yaml)")
	generateCmd.Flags().StringVar(&generateStructsDir, "structs", "", "Load declarations from Go structs in this directory")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the schema to a file instead of stdout")
	generateCmd.Flags().BoolVar(&generateContentVersion, "content-version", false, "Stamp the schema with a content checksum")
	generateCmd.Flags().BoolVar(&generateNoIndexes, "no-indexes", false, "Skip index inference")
	generateCmd.Flags().BoolVar(&generateNoConstraints, "no-constraints", false, "Skip constraint inference")
	generateCmd.Flags().IntVar(&generateStringLength, "string-length", 0, "Default length for string columns (default 255)")
}
