package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter collections.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("collections.yaml"); err == nil {
			fmt.Println("❌ collections.yaml already exists!")
			return
		}

		content := `# Collection declarations. Property values may be a type tag, a union
# (first member significant), or a descriptor with type and optional/required.
collections:
  User:
    id: string
    email: { type: string, required: true }
    name: string
    created_at: Date
  Post:
    id: string
    user_id: string
    title: string
    content: { type: string, optional: true }
    created_at: Date
`

		if err := os.WriteFile("collections.yaml", []byte(content), 0644); err != nil {
			fmt.Printf("❌ Error writing collections.yaml: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✅ Created collections.yaml")
		fmt.Println("   Next: set DATABASE_URL (or add it to .env) and run 'schemadrift drift'")
	},
}
