package state

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/fsutil"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/partials"
	"git.home.luguber.info/inful/i3configger/internal/util/sets"
)

// DefaultReservedKeys are never seeded into a fresh document.
var DefaultReservedKeys = []string{"i3status"}

// Store reads and writes the state document at a fixed path.
type Store struct {
	path     string
	protocol Protocol
	reserved sets.Set[string]
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithReservedKeys replaces the keys skipped when seeding a fresh document.
func WithReservedKeys(keys ...string) Option {
	return func(s *Store) { s.reserved = sets.New(keys...) }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store for the document at path.
func NewStore(path string, protocol Protocol, opts ...Option) *Store {
	s := &Store{
		path:     path,
		protocol: protocol,
		reserved: sets.New(DefaultReservedKeys...),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the persisted document.
func (s *Store) Path() string { return s.path }

// Protocol returns the command table the store dispatches with.
func (s *Store) Protocol() Protocol { return s.protocol }

// Load reads the document. A missing document is seeded from prts and persisted.
func (s *Store) Load(prts []*partials.Partial) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc, err := s.Seed(prts)
		if err != nil {
			return nil, err
		}
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		s.logger.Info("Initialized state", logfields.Path(s.path), slog.Int("selections", len(doc.Select)))
		return doc, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read state").
			WithContext("path", s.path).
			Build()
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "malformed state document").
			WithContext("path", s.path).
			Build()
	}
	return doc, nil
}

// Seed builds a fresh document choosing one value per conditional key: the
// default candidate if there is one, else the first in file name order.
func (s *Store) Seed(prts []*partials.Partial) (*Document, error) {
	doc := NewDocument()
	for _, key := range partials.Keys(prts) {
		if s.reserved.Has(key) {
			continue
		}
		value, err := initialValue(prts, key)
		if err != nil {
			return nil, err
		}
		doc.Select[key] = value
	}
	return doc, nil
}

func initialValue(prts []*partials.Partial, key string) (string, error) {
	candidates := partials.Candidates(prts, key)
	for _, p := range partials.Sorted(prts) {
		if !p.Conditional() || p.Key != key {
			continue
		}
		isDefault, err := p.IsDefault()
		if err != nil {
			return "", err
		}
		if isDefault {
			return p.Value, nil
		}
	}
	return candidates[0], nil
}

// Save persists doc atomically.
func (s *Store) Save(doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode state").Build()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create state directory").
			WithContext("path", s.path).
			Build()
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write state").
			WithContext("path", s.path).
			Build()
	}
	return nil
}

// Process parses tokens, applies the command to a copy of the current document
// and persists the copy. Nothing is written when parsing or applying fails.
func (s *Store) Process(prts []*partials.Partial, tokens []string) (*Document, error) {
	msg, err := s.protocol.Parse(tokens)
	if err != nil {
		return nil, err
	}
	current, err := s.Load(prts)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := s.protocol.Apply(next, prts, msg); err != nil {
		return nil, err
	}
	if err := s.Save(next); err != nil {
		return nil, err
	}
	s.logger.Info("State changed",
		logfields.Command(string(msg.Command)),
		slog.Any("args", slices.Clone(msg.Args)))
	return next, nil
}
