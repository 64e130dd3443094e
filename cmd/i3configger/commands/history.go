package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/journal"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"20"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, closeLog, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if cfg.Settings.Journal == "" {
		return ferrors.ConfigError("settings.journal is not configured").
			WithContext("path", cfg.Path).
			Build()
	}
	ctx := context.Background()
	j, err := journal.Open(ctx, cfg.Settings.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	return printHistory(os.Stdout, entries)
}

func printHistory(w io.Writer, entries []journal.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tTRIGGER\tOUTCOME\tDURATION\tERROR")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime),
			e.Build, e.Trigger, e.Outcome,
			e.Duration.Round(time.Microsecond), e.Error)
	}
	return tw.Flush()
}
