package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/i3configger/internal/state"
)

// SelectCmd implements 'select <key> <value>'.
type SelectCmd struct {
	Key   string `arg:"" help:"Conditional key, e.g. scheme"`
	Value string `arg:"" help:"Value to select, e.g. dark"`
}

func (c *SelectCmd) Run(g *Global, root *CLI) error {
	return runMessage(g, root, os.Stdout, string(state.CommandSelect), c.Key, c.Value)
}

// SelectNextCmd implements 'select-next <key>'.
type SelectNextCmd struct {
	Key string `arg:"" help:"Conditional key to advance"`
}

func (c *SelectNextCmd) Run(g *Global, root *CLI) error {
	return runMessage(g, root, os.Stdout, string(state.CommandSelectNext), c.Key)
}

// SelectPreviousCmd implements 'select-previous <key>'.
type SelectPreviousCmd struct {
	Key string `arg:"" help:"Conditional key to step back"`
}

func (c *SelectPreviousCmd) Run(g *Global, root *CLI) error {
	return runMessage(g, root, os.Stdout, string(state.CommandSelectPrevious), c.Key)
}

// SetCmd implements 'set <key> <value>'.
type SetCmd struct {
	Key   string `arg:"" help:"Variable name"`
	Value string `arg:"" help:"Value, or 'del' to remove the variable"`
}

func (c *SetCmd) Run(g *Global, root *CLI) error {
	return runMessage(g, root, os.Stdout, string(state.CommandSet), c.Key, c.Value)
}

// runMessage applies a state command and rebuilds, since no watch loop is
// there to pick up the rewritten state file.
func runMessage(g *Global, root *CLI, out io.Writer, tokens ...string) error {
	ctx := context.Background()
	s, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	if _, err := s.daemon.HandleMessage(ctx, tokens); err != nil {
		return err
	}
	results, err := s.daemon.BuildAll(ctx, TriggerCLI)
	printResults(out, results)
	return err
}

// StateCmd implements the 'state' command.
type StateCmd struct{}

func (c *StateCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	prts, err := s.daemon.Partials()
	if err != nil {
		return err
	}
	doc, err := s.daemon.Store().Load(prts)
	if err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, string(data))
	return err
}
