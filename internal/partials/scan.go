package partials

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// HasSuffix reports whether name carries the configured fragment suffix.
func HasSuffix(name, suffix string) bool {
	return filepath.Ext(name) == suffix
}

// Scan lists the regular files of dir accepted by accept, as sorted partials.
// Hidden files (editor swap and lock files) are ignored.
func Scan(dir string, accept func(name string) bool) ([]*Partial, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "list partials").
			WithContext("dir", dir).
			Build()
	}
	var prts []*Partial
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !isFile(dir, entry) {
			continue
		}
		if accept != nil && !accept(name) {
			continue
		}
		prts = append(prts, New(filepath.Join(dir, name)))
	}
	return Sorted(prts), nil
}

// Create lists all partials of dir with the given suffix; finding none is an error.
func Create(dir, suffix string) ([]*Partial, error) {
	prts, err := Scan(dir, func(name string) bool { return HasSuffix(name, suffix) })
	if err != nil {
		return nil, err
	}
	if len(prts) == 0 {
		return nil, ferrors.ConfigError("no partials found").
			WithContext("dir", dir).
			WithContext("suffix", suffix).
			Build()
	}
	return prts, nil
}

// Sorted returns a copy ordered by file name, path breaking ties.
func Sorted(prts []*Partial) []*Partial {
	out := slices.Clone(prts)
	slices.SortStableFunc(out, func(a, b *Partial) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

func isFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
