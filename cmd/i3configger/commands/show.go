package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/i3configger/internal/build"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// ShowCmd implements the 'show' command: a dry run of 'build'.
type ShowCmd struct {
	Build   string `short:"b" help:"Only render the named build definition"`
	Display bool   `help:"Print the selected partials with name banners instead of the target content"`
}

func (c *ShowCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return c.render(s, os.Stdout)
}

func (c *ShowCmd) render(s *session, out io.Writer) error {
	selection, err := s.daemon.Selection()
	if err != nil {
		return err
	}
	shown := 0
	for _, def := range s.daemon.Definitions() {
		if c.Build != "" && def.Name() != c.Build {
			continue
		}
		content, err := c.content(def, selection)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "==> %s (%s) <==\n%s", def.Name(), def.Target(), content); err != nil {
			return err
		}
		shown++
	}
	if shown == 0 && c.Build != "" {
		return ferrors.ValidationError("unknown build definition").
			WithContext("build", c.Build).
			Build()
	}
	return nil
}

func (c *ShowCmd) content(def *build.Definition, selection map[string]string) (string, error) {
	if c.Display {
		return def.Content(selection)
	}
	content, _, err := def.Render(selection)
	return content, err
}
