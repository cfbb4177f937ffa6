package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .psdef/ workspace
// directory. All fields are pre-computed strings.
type Paths struct {
	Root        string // .psdef/
	DB          string // .psdef/psdef.db
	GrammarsDir string // .psdef/grammars/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".psdef")
	return &Paths{
		Root:        root,
		DB:          filepath.Join(root, "psdef.db"),
		GrammarsDir: filepath.Join(root, "grammars"),
	}
}

// EnsureDirs creates all subdirectories under .psdef/. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{
		p.Root,
		p.GrammarsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the workspace directory has been initialized.
func (p *Paths) Exists() bool {
	info, err := os.Stat(p.Root)
	return err == nil && info.IsDir()
}
