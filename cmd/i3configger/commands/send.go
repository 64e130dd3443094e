package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/messaging"
)

// SendCmd implements 'send <command> [args...]'.
type SendCmd struct {
	Tokens  []string      `arg:"" help:"State command and its arguments, e.g. select scheme dark"`
	Timeout time.Duration `help:"How long to wait for the watcher to answer" default:"5s"`
}

func (c *SendCmd) Run(g *Global, root *CLI) error {
	cfg, closeLog, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	nc := cfg.Settings.NATS
	if !nc.Enabled() {
		return ferrors.ConfigError("settings.nats.url is not configured").
			WithContext("path", cfg.Path).
			Build()
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	reply, err := messaging.Send(ctx, nc.URL, nc.Subject, c.Tokens)
	if err != nil {
		return err
	}
	if !reply.OK {
		return ferrors.MessageError(reply.Error).
			WithContext("subject", nc.Subject).
			Build()
	}
	_, _ = fmt.Fprintln(os.Stdout, "ok")
	return nil
}
