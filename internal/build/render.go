package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/fsutil"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/partials"
)

// Result describes a written target.
type Result struct {
	Name     string
	Target   string
	Partials []string
	Bytes    int
	Duration time.Duration
}

// Render assembles the target content for the given state selection.
func (d *Definition) Render(selection map[string]string) (string, []string, error) {
	var parts []string
	if d.def.AddHeader {
		parts = append(parts, d.header())
	}
	if d.def.Theme != "" {
		theme, err := d.themeContent()
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, theme)
	}

	prts, err := d.Partials()
	if err != nil {
		return "", nil, err
	}
	if len(prts) == 0 {
		return "", nil, ferrors.BuildError("no partials found").
			WithContext("build", d.def.Name).
			WithContext("suffix", d.def.Suffix).
			Build()
	}
	selected, err := partials.Select(prts, d.selectorFor(selection, prts), d.excludeKeys)
	if err != nil {
		return "", nil, err
	}
	names := make([]string, 0, len(selected))
	for _, p := range selected {
		content, err := p.Raw()
		if err != nil {
			return "", nil, err
		}
		if d.def.AddInfo {
			content = fmt.Sprintf("### %s ###\n", p.Path) + content
		}
		parts = append(parts, content)
		names = append(names, p.Name)
	}
	return join(parts), names, nil
}

// Build renders and atomically replaces the target.
func (d *Definition) Build(selection map[string]string) (*Result, error) {
	start := d.clock.Now()
	content, names, err := d.Render(selection)
	if err != nil {
		return nil, err
	}
	target := d.def.Target
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create target directory").
			WithContext("target", target).
			Build()
	}
	if err := fsutil.WriteFileAtomic(target, []byte(content), 0o644); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write target").
			WithContext("target", target).
			Build()
	}
	res := &Result{
		Name:     d.def.Name,
		Target:   target,
		Partials: names,
		Bytes:    len(content),
		Duration: d.clock.Since(start),
	}
	d.logger.Debug("Built target", logfields.Target(target), logfields.Duration(res.Duration))
	return res, nil
}

func (d *Definition) header() string {
	msg := fmt.Sprintf("# %s (i3configger: %s) #", d.def.Name, d.clock.Now().Format(time.ANSIC))
	sep := strings.Repeat("#", len(msg))
	return sep + "\n" + msg + "\n" + sep
}

// themeContent concatenates every file named like the selected theme, in
// theme directory order.
func (d *Definition) themeContent() (string, error) {
	var found []string
	for _, dir := range d.def.Themes {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "list theme directory").
				WithContext("dir", dir).
				Build()
		}
		for _, entry := range entries {
			if entry.Name() != d.def.Theme || entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "read theme").
					WithContext("path", path).
					Build()
			}
			found = append(found, string(data))
		}
	}
	if len(found) == 0 {
		return "", ferrors.SelectionError("no content for theme").
			WithContext("theme", d.def.Theme).
			WithContext("build", d.def.Name).
			Build()
	}
	return join(found), nil
}

// join separates parts by one blank line and ends with a single newline.
func join(parts []string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed = append(trimmed, strings.TrimRight(p, "\n"))
	}
	return strings.Join(trimmed, "\n\n") + "\n"
}

// Content shows the selected partials with their name banners, for inspection.
func (d *Definition) Content(selection map[string]string) (string, error) {
	prts, err := d.Partials()
	if err != nil {
		return "", err
	}
	return partials.Content(prts, d.selectorFor(selection, prts), d.excludeKeys)
}
