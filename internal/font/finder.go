package font

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Finder locates font-related files (tfm, pk, pfb, ttf, otf, enc, map) by
// base name below a list of directories. The directories are indexed on
// first use; later lookups are map accesses.
type Finder struct {
	dirs []string

	once  sync.Once
	mu    sync.RWMutex
	index map[string]string
}

// NewFinder creates a finder searching dirs in order. Earlier directories
// win when the same file name occurs more than once.
func NewFinder(dirs ...string) *Finder {
	return &Finder{dirs: dirs}
}

// Dirs returns the searched directories.
func (f *Finder) Dirs() []string { return f.dirs }

func (f *Finder) build() {
	idx := make(map[string]string)
	for _, dir := range f.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			key := strings.ToLower(d.Name())
			if _, seen := idx[key]; !seen {
				idx[key] = path
			}
			return nil
		})
	}
	f.mu.Lock()
	f.index = idx
	f.mu.Unlock()
}

// Find returns the path of name. When exts are given they are tried in
// order as suffixes of name; a name that already carries one of them is
// looked up as is. A path to an existing file is returned unchanged.
func (f *Finder) Find(name string, exts ...string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name, true
		}
		return "", false
	}
	if f == nil {
		return "", false
	}
	f.once.Do(f.build)

	f.mu.RLock()
	defer f.mu.RUnlock()
	candidates := []string{name}
	if len(exts) > 0 && !hasExt(name, exts) {
		candidates = candidates[:0]
		for _, ext := range exts {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		if p, ok := f.index[strings.ToLower(c)]; ok {
			return p, true
		}
	}
	return "", false
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Open finds and opens name.
func (f *Finder) Open(name string, exts ...string) (*os.File, error) {
	p, ok := f.Find(name, exts...)
	if !ok {
		return nil, &fs.PathError{Op: "find", Path: name, Err: fs.ErrNotExist}
	}
	return os.Open(p) // #nosec G304 -- path comes from the configured font directories
}
