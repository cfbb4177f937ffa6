//go:build !cgo

package cmd

import (
	"fmt"

	"github.com/corey/psdef/internal/ports"
)

// newFrontEnd fails in pure Go builds: the tree-sitter runtime needs CGo.
func newFrontEnd(_ string) (ports.FrontEnd, error) {
	return nil, fmt.Errorf("%w: this binary was built without CGo; rebuild with CGO_ENABLED=1",
		ports.ErrFrontEndUnavailable)
}
