package state

import (
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/partials"
)

// Command names one state mutation.
type Command string

const (
	CommandSelect         Command = "select"
	CommandSelectNext     Command = "select-next"
	CommandSelectPrevious Command = "select-previous"
	CommandSet            Command = "set"
)

// DeleteSentinel as the value of a set command removes the key. Compared case-insensitively.
const DeleteSentinel = "del"

// Message is a parsed command with its arguments.
type Message struct {
	Command Command
	Args    []string
}

// Tokens renders the message back into its wire form.
func (m Message) Tokens() []string {
	return append([]string{string(m.Command)}, m.Args...)
}

// Handler applies a message's arguments to doc.
type Handler func(doc *Document, prts []*partials.Partial, args []string) error

type operation struct {
	arity   int
	handler Handler
}

// Protocol is the fixed table of state commands. It is built once and never mutated.
type Protocol struct {
	ops map[Command]operation
}

// NewProtocol returns the standard command table.
func NewProtocol() Protocol {
	return Protocol{ops: map[Command]operation{
		CommandSelect:         {arity: 2, handler: applySelect},
		CommandSelectNext:     {arity: 1, handler: stepper(1)},
		CommandSelectPrevious: {arity: 1, handler: stepper(-1)},
		CommandSet:            {arity: 2, handler: applySet},
	}}
}

// Commands lists the known command names, sorted.
func (p Protocol) Commands() []string {
	names := make([]string, 0, len(p.ops))
	for c := range p.ops {
		names = append(names, string(c))
	}
	slices.Sort(names)
	return names
}

// Parse validates command name and arity.
func (p Protocol) Parse(tokens []string) (Message, error) {
	if len(tokens) == 0 {
		return Message{}, ferrors.MessageError("empty message").
			WithContext("known", strings.Join(p.Commands(), ",")).
			Build()
	}
	cmd := Command(tokens[0])
	op, ok := p.ops[cmd]
	if !ok {
		return Message{}, ferrors.MessageError("unknown command").
			WithContext("command", tokens[0]).
			WithContext("known", strings.Join(p.Commands(), ",")).
			Build()
	}
	args := tokens[1:]
	if len(args) != op.arity {
		return Message{}, ferrors.MessageError("wrong number of arguments").
			WithContext("command", tokens[0]).
			WithContext("want", op.arity).
			WithContext("got", len(args)).
			Build()
	}
	return Message{Command: cmd, Args: slices.Clone(args)}, nil
}

// Apply runs msg against doc in place.
func (p Protocol) Apply(doc *Document, prts []*partials.Partial, msg Message) error {
	op, ok := p.ops[msg.Command]
	if !ok {
		return ferrors.MessageError("unknown command").
			WithContext("command", string(msg.Command)).
			Build()
	}
	return op.handler(doc.normalized(), prts, msg.Args)
}

func applySelect(doc *Document, prts []*partials.Partial, args []string) error {
	key, value := args[0], args[1]
	if _, ok := partials.Find(prts, key, value); !ok {
		return ferrors.SelectionError("no candidate").
			WithContext("key", key).
			WithContext("value", value).
			Build()
	}
	doc.Select[key] = value
	return nil
}

func stepper(step int) Handler {
	return func(doc *Document, prts []*partials.Partial, args []string) error {
		key := args[0]
		candidates := partials.Candidates(prts, key)
		if len(candidates) == 0 {
			return ferrors.SelectionError("no candidates").
				WithContext("key", key).
				Build()
		}
		doc.Select[key] = advance(candidates, doc.Select[key], step)
		return nil
	}
}

// advance moves step positions from current, wrapping at both ends. An unset
// current counts as the last candidate; a current value that is no longer a
// candidate moves to the first (forward) or last (backward) candidate.
func advance(candidates []string, current string, step int) string {
	n := len(candidates)
	if current == "" {
		current = candidates[n-1]
	}
	idx := slices.Index(candidates, current)
	if idx < 0 {
		if step > 0 {
			return candidates[0]
		}
		return candidates[n-1]
	}
	return candidates[((idx+step)%n+n)%n]
}

func applySet(doc *Document, _ []*partials.Partial, args []string) error {
	key, value := args[0], args[1]
	if strings.EqualFold(value, DeleteSentinel) {
		delete(doc.Set, key)
		return nil
	}
	doc.Set[key] = value
	return nil
}
