// Package messaging receives state commands over NATS and sends them from the CLI.
//
// A command is a JSON array of tokens such as ["select", "scheme", "light"];
// a plain space separated string is accepted as well. Every request gets a JSON
// Reply.
package messaging

import (
	"bytes"
	"encoding/json"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// Reply answers one command.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ReplyFor builds the reply for the outcome of a command.
func ReplyFor(err error) Reply {
	if err != nil {
		return Reply{Error: err.Error()}
	}
	return Reply{OK: true}
}

// Request is an inbound command waiting for its outcome.
type Request struct {
	Tokens  []string
	respond func(Reply)
}

// NewRequest creates a request whose outcome is passed to respond.
func NewRequest(tokens []string, respond func(Reply)) Request {
	return Request{Tokens: tokens, respond: respond}
}

// Respond reports the outcome of the command to the sender.
func (r Request) Respond(err error) {
	if r.respond != nil {
		r.respond(ReplyFor(err))
	}
}

// DecodeTokens parses a message payload into command tokens.
func DecodeTokens(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ferrors.MessageError("empty message").Build()
	}
	if data[0] != '[' {
		return strings.Fields(string(data)), nil
	}
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryMessage, "malformed message").
			WithContext("payload", string(data)).
			Build()
	}
	return tokens, nil
}
