package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
)

const clientName = "i3configger"

// Listener forwards commands published on a NATS subject.
type Listener struct {
	conn     *nats.Conn
	sub      *nats.Subscription
	requests chan Request
	done     chan struct{}
	logger   *slog.Logger
}

// Listen connects to url and subscribes to subject. Requests must be drained
// through Requests; each one is answered once the receiver calls Respond.
func Listen(url, subject string, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "connect to NATS").
			WithContext("url", url).
			Build()
	}
	l := &Listener{
		conn:     conn,
		requests: make(chan Request, 16),
		done:     make(chan struct{}),
		logger:   logger,
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		l.handle(msg.Data, msg.Respond)
	})
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "subscribe").
			WithContext("subject", subject).
			Build()
	}
	l.sub = sub
	logger.Info("Listening for commands", slog.String("url", url), slog.String("subject", subject))
	return l, nil
}

// Requests delivers decoded commands.
func (l *Listener) Requests() <-chan Request { return l.requests }

// Close unsubscribes and closes the connection.
func (l *Listener) Close() error {
	close(l.done)
	var err error
	if l.sub != nil {
		err = l.sub.Unsubscribe()
	}
	if l.conn != nil {
		l.conn.Close()
	}
	return err
}

func (l *Listener) handle(data []byte, reply func([]byte) error) {
	respond := func(r Reply) {
		payload, err := json.Marshal(r)
		if err != nil {
			return
		}
		if err := reply(payload); err != nil {
			l.logger.Debug("Could not answer command", logfields.Error(err))
		}
	}
	tokens, err := DecodeTokens(data)
	if err != nil {
		respond(ReplyFor(err))
		return
	}
	select {
	case l.requests <- NewRequest(tokens, respond):
	case <-l.done:
	}
}

// Send publishes tokens to subject and waits for the reply.
func Send(ctx context.Context, url, subject string, tokens []string) (Reply, error) {
	conn, err := nats.Connect(url, nats.Name(clientName), nats.Timeout(5*time.Second))
	if err != nil {
		return Reply{}, ferrors.WrapError(err, ferrors.CategoryNetwork, "connect to NATS").
			WithContext("url", url).
			Build()
	}
	defer conn.Close()

	data, err := json.Marshal(tokens)
	if err != nil {
		return Reply{}, ferrors.WrapError(err, ferrors.CategoryInternal, "encode command").Build()
	}
	msg, err := conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return Reply{}, ferrors.WrapError(err, ferrors.CategoryNetwork, "send command").
			WithContext("subject", subject).
			Build()
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return Reply{}, ferrors.WrapError(err, ferrors.CategoryMessage, "malformed reply").
			WithContext("payload", string(msg.Data)).
			Build()
	}
	return reply, nil
}
