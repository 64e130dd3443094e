package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/i3configger/internal/build"
)

// TriggerCLI marks builds started directly from the command line.
const TriggerCLI = "cli"

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	results, err := s.daemon.BuildAll(ctx, TriggerCLI)
	printResults(os.Stdout, results)
	return err
}

func printResults(w io.Writer, results []*build.Result) {
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "built %s -> %s (%d partials, %d bytes)\n",
			r.Name, r.Target, len(r.Partials), r.Bytes)
	}
}
