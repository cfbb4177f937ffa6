package treesitter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// PlatformString returns the OS-arch string for the current platform.
// e.g. "linux-amd64", "darwin-arm64"
func PlatformString() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// GlobalGrammarDir returns the default global grammar directory: ~/.psdef/grammars/
func GlobalGrammarDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".psdef", "grammars")
}

// InstallGrammar copies a grammar shared library into destDir under the
// canonical name, then verifies the copy actually loads and exposes the
// grammar symbol before trusting it. On verification failure the copy is
// removed. Returns the installed path.
func InstallGrammar(srcPath, destDir string) (string, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", fmt.Errorf("grammar source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("grammar source %s is a directory, want a %s file", srcPath, LibExtension())
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create grammar dir: %w", err)
	}

	destPath := filepath.Join(destDir, LibraryName())
	if err := copyFile(srcPath, destPath); err != nil {
		return "", fmt.Errorf("install grammar: %w", err)
	}

	if _, err := NewDynamicLoader([]string{destDir}).Load(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("installed grammar failed verification: %w", err)
	}
	return destPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
