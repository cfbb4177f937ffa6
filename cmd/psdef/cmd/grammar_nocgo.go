//go:build !cgo

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Manage the tree-sitter PowerShell grammar (requires CGo)",
	Long:  "Grammar management needs the tree-sitter runtime, which CGO_ENABLED=0 builds do not carry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This binary was built without CGo, so the tree-sitter runtime is unavailable.")
		fmt.Println("Rebuild to enable parsing and grammar management:")
		fmt.Println("  CGO_ENABLED=1 go build ./cmd/psdef/")
		return nil
	},
}
