package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all psdef data for this project",
	Long:  "Removes the .psdef directory: the scan cache and any installed grammars.",
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)

	if !paths.Exists() {
		fmt.Println("⚡ nothing to wipe")
		return nil
	}

	if !wipeForce {
		fmt.Printf("⚠ This will delete the cache and installed grammars for %s. Continue? [y/N] ",
			filepath.Base(root))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	if err := os.RemoveAll(paths.Root); err != nil {
		return fmt.Errorf("remove %s: %w", paths.Root, err)
	}

	fmt.Println("⚡ project data wiped")
	return nil
}
