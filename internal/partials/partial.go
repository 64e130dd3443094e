package partials

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

const (
	// CommentMark starts a comment line in the window manager configuration.
	CommentMark = "#"
	// EndOfLineCommentMark separates trailing comments from the payload of a line.
	EndOfLineCommentMark = " # "
	// DefaultValue marks a conditional partial as the default of its key by name.
	DefaultValue = "default"
	// DefaultMarker marks a conditional partial as the default of its key by content.
	DefaultMarker = "# i3configger default"
	// SetMark starts a variable assignment line, dropped from filtered content.
	SetMark = "set $"
)

// continuationRE matches the window manager's line continuation: a trailing backslash.
var continuationRE = regexp.MustCompile(`\\[ \t]*\r?\n`)

// Partial is one fragment file. Identity and selectors are fixed at construction.
type Partial struct {
	Path      string
	Name      string
	Selectors []string
	Key       string
	Value     string
}

// New derives a Partial from a file path without touching the disk.
func New(path string) *Partial {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	p := &Partial{
		Path:      path,
		Name:      name,
		Selectors: strings.Split(stem, "."),
	}
	if p.Conditional() {
		p.Key = p.Selectors[0]
		p.Value = p.Selectors[1]
	}
	return p
}

func (p *Partial) String() string {
	return fmt.Sprintf("Partial(%s)", p.Name)
}

// Conditional reports whether the partial carries a key/value selector.
func (p *Partial) Conditional() bool {
	return len(p.Selectors) > 1
}

// IsDefault reports whether the partial is the default choice for its key.
func (p *Partial) IsDefault() (bool, error) {
	if p.Value == DefaultValue {
		return true, nil
	}
	raw, err := p.Raw()
	if err != nil {
		return false, err
	}
	return strings.Contains(raw, DefaultMarker), nil
}

// Raw returns the current on-disk content.
func (p *Partial) Raw() (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "read partial").
			WithContext("path", p.Path).
			Build()
	}
	return string(data), nil
}

// Filtered returns the content without blank lines, comment lines and variable assignments.
func (p *Partial) Filtered() (string, error) {
	return p.prune(false)
}

// Payload is Filtered with trailing end-of-line comments removed.
func (p *Partial) Payload() (string, error) {
	return p.prune(true)
}

// Display wraps the payload in a banner naming the partial; empty payloads display as "".
func (p *Partial) Display() (string, error) {
	payload, err := p.Payload()
	if err != nil || payload == "" {
		return "", err
	}
	return fmt.Sprintf("### %s ###\n%s\n", p.Name, payload), nil
}

func (p *Partial) prune(stripEndOfLine bool) (string, error) {
	raw, err := p.Raw()
	if err != nil {
		return "", err
	}
	joined := continuationRE.ReplaceAllString(raw, " ")
	var kept []string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, CommentMark) || strings.HasPrefix(trimmed, SetMark) {
			continue
		}
		if stripEndOfLine {
			if i := strings.LastIndex(line, EndOfLineCommentMark); i >= 0 {
				line = line[:i]
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}
