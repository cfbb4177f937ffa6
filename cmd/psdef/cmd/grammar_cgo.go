//go:build cgo

package cmd

import (
	"fmt"

	"github.com/corey/psdef/internal/adapters/treesitter"
	"github.com/corey/psdef/internal/app"
	"github.com/spf13/cobra"
)

var grammarGlobal bool

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Manage the tree-sitter PowerShell grammar",
	Long:  "Show where the PowerShell grammar comes from and install a dynamically loadable copy for lean builds.",
}

var grammarListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show grammar status",
	RunE:  runGrammarList,
}

var grammarPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show grammar search paths",
	RunE:  runGrammarPath,
}

var grammarInstallCmd = &cobra.Command{
	Use:   "install <shared-library>",
	Short: "Install a grammar shared library",
	Long: `Copies a compiled tree-sitter PowerShell grammar into the project grammar
directory (or the global one with --global) and verifies it loads.

Build one from the grammar's C sources:

  gcc -shared -fPIC -o powershell.so src/parser.c src/scanner.c

(.dylib instead of .so on macOS)`,
	Args: cobra.ExactArgs(1),
	RunE: runGrammarInstall,
}

func init() {
	grammarInstallCmd.Flags().BoolVar(&grammarGlobal, "global", false,
		"Install to ~/.psdef/grammars instead of the project directory")
	grammarCmd.AddCommand(grammarListCmd)
	grammarCmd.AddCommand(grammarPathCmd)
	grammarCmd.AddCommand(grammarInstallCmd)
}

func runGrammarList(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	loader := treesitter.NewDynamicLoader(treesitter.DefaultGrammarPaths(root))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Grammar:    %s\n", treesitter.LanguageName)
	fmt.Fprintf(out, "Extensions: .ps1, .psm1\n")
	fmt.Fprintf(out, "Library:    %s\n", treesitter.LibraryName())
	fmt.Fprintf(out, "Platform:   %s\n", treesitter.PlatformString())

	fe, err := treesitter.NewFrontEnd(nil)
	switch {
	case err == nil && fe.Grammar() == treesitter.GrammarBuiltin:
		fmt.Fprintln(out, "Status:     built-in (compiled into this binary)")
	default:
		if p := loader.LibraryPath(); p != "" {
			fmt.Fprintf(out, "Status:     installed (%s)\n", p)
		} else {
			fmt.Fprintln(out, "Status:     not installed")
			fmt.Fprintln(out, "\nInstall a compiled grammar with: psdef grammar install <shared-library>")
		}
	}
	return nil
}

func runGrammarPath(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	loader := treesitter.NewDynamicLoader(treesitter.DefaultGrammarPaths(root))
	global := treesitter.GlobalGrammarDir()
	out := cmd.OutOrStdout()

	for _, loc := range loader.Locations() {
		marker := "  "
		if loc.Path != "" {
			marker = "* "
		}
		scope := "project"
		if loc.Dir == global {
			scope = "global"
		}
		fmt.Fprintf(out, "%s%s (%s)\n", marker, loc.Dir, scope)
	}
	fmt.Fprintf(out, "\n* = holds %s\n", treesitter.LibraryName())
	return nil
}

func runGrammarInstall(cmd *cobra.Command, args []string) error {
	root := projectRoot()

	destDir := app.NewPaths(root).GrammarsDir
	if grammarGlobal {
		destDir = treesitter.GlobalGrammarDir()
		if destDir == "" {
			return fmt.Errorf("cannot resolve home directory for global install")
		}
	}

	installed, err := treesitter.InstallGrammar(args[0], destDir)
	if err != nil {
		return fmt.Errorf("install grammar: %w", err)
	}

	fmt.Printf("⚡ grammar installed: %s\n", installed)
	fmt.Println("  lean builds will load it from here automatically")
	return nil
}
