package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// grammarSymbol is the entry point a compiled tree-sitter grammar exports,
// following the tree_sitter_<language> convention.
const grammarSymbol = "tree_sitter_" + LanguageName

// DynamicLoader resolves the PowerShell grammar from a shared library
// (powershell.so on Linux, powershell.dylib on macOS) via purego. Search
// paths are probed in order and the first library found wins. Lean builds
// (-tags lean) rely on it exclusively; default builds only reach it when
// the compiled-in grammar is disabled.
type DynamicLoader struct {
	searchPaths []string

	mu   sync.Mutex
	lang *tree_sitter.Language
}

// NewDynamicLoader creates a loader that probes the given directories for
// the grammar library.
func NewDynamicLoader(searchPaths []string) *DynamicLoader {
	return &DynamicLoader{searchPaths: searchPaths}
}

// DefaultGrammarPaths returns the directories probed for the grammar
// library. Project-local (.psdef/grammars/) is probed before global
// (~/.psdef/grammars/).
func DefaultGrammarPaths(projectRoot string) []string {
	var paths []string
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".psdef", "grammars"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".psdef", "grammars"))
	}
	return paths
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// LibraryName returns the file name the loader expects for the grammar
// library on this platform, e.g. "powershell.so".
func LibraryName() string {
	return LanguageName + LibExtension()
}

// Location pairs a search directory with the grammar library found in it.
type Location struct {
	Dir  string
	Path string // empty when Dir holds no grammar library
}

// Locations reports every search directory and the grammar library it
// holds, in probe order. Earlier entries shadow later ones.
func (dl *DynamicLoader) Locations() []Location {
	locs := make([]Location, 0, len(dl.searchPaths))
	for _, dir := range dl.searchPaths {
		loc := Location{Dir: dir}
		candidate := filepath.Join(dir, LibraryName())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			loc.Path = candidate
		}
		locs = append(locs, loc)
	}
	return locs
}

// LibraryPath returns the grammar library Load would pick, or "" when no
// search directory holds one.
func (dl *DynamicLoader) LibraryPath() string {
	for _, loc := range dl.Locations() {
		if loc.Path != "" {
			return loc.Path
		}
	}
	return ""
}

// Load resolves the PowerShell grammar from the search paths and caches it
// for the loader's lifetime. The library stays mapped until the process
// exits; the returned Language points into it.
func (dl *DynamicLoader) Load() (*tree_sitter.Language, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.lang != nil {
		return dl.lang, nil
	}

	soPath := dl.LibraryPath()
	if soPath == "" {
		return nil, fmt.Errorf("grammar library %s not found in search paths", LibraryName())
	}

	handle, err := purego.Dlopen(soPath, purego.RTLD_LAZY)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", soPath, err)
	}

	sym, err := purego.Dlsym(handle, grammarSymbol)
	if err != nil {
		return nil, fmt.Errorf("%s: missing symbol %s: %w", soPath, grammarSymbol, err)
	}

	var langFunc func() uintptr
	purego.RegisterFunc(&langFunc, sym)
	ptr := langFunc()
	if ptr == 0 {
		return nil, fmt.Errorf("%s: %s() returned null", soPath, grammarSymbol)
	}

	// uintptr → unsafe.Pointer without tripping go vet's unsafeptr check.
	// ptr is a static TSLanguage* inside the mapped library, never a
	// Go-managed pointer the GC could move.
	dl.lang = tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	return dl.lang, nil
}

// SearchPaths returns the probed directories in priority order.
func (dl *DynamicLoader) SearchPaths() []string {
	return dl.searchPaths
}
