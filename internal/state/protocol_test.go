package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/partials"
)

func fixturePartials(t *testing.T, files map[string]string) []*partials.Partial {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	prts, err := partials.Create(dir, ".conf")
	require.NoError(t, err)
	return prts
}

func TestParseArity(t *testing.T) {
	proto := NewProtocol()
	cases := []struct {
		tokens []string
		ok     bool
	}{
		{[]string{}, false},
		{[]string{""}, false},
		{[]string{"dunno"}, false},
		{[]string{"select-next"}, false},
		{[]string{"select-previous"}, false},
		{[]string{"set"}, false},
		{[]string{"select"}, false},
		{[]string{"select", "hostname", "ob1"}, true},
		{[]string{"set", "someVar", "someValue"}, true},
		{[]string{"set", "someVar"}, false},
		{[]string{"select-next", "scheme"}, true},
		{[]string{"select-next", "scheme", "extra"}, false},
		{[]string{"select-previous", "scheme"}, true},
		{[]string{"select-previous", "scheme", "extra"}, false},
	}
	for _, tc := range cases {
		msg, err := proto.Parse(tc.tokens)
		if tc.ok {
			require.NoError(t, err, tc.tokens)
			assert.Equal(t, tc.tokens, msg.Tokens())
			continue
		}
		require.Error(t, err, tc.tokens)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryMessage), tc.tokens)
	}
}

func TestParseUnknownListsCommands(t *testing.T) {
	_, err := NewProtocol().Parse([]string{"frobnicate", "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
	assert.Contains(t, err.Error(), "select,select-next,select-previous,set")
}

func TestSelectNextPreviousAreInverse(t *testing.T) {
	prts := fixturePartials(t, map[string]string{
		"scheme.a.conf": "x\n",
		"scheme.b.conf": "x\n",
		"scheme.c.conf": "x\n",
	})
	proto := NewProtocol()
	for _, start := range []string{"a", "b", "c"} {
		doc := NewDocument()
		doc.Select["scheme"] = start
		require.NoError(t, proto.Apply(doc, prts, Message{Command: CommandSelectNext, Args: []string{"scheme"}}))
		require.NoError(t, proto.Apply(doc, prts, Message{Command: CommandSelectPrevious, Args: []string{"scheme"}}))
		assert.Equal(t, start, doc.Select["scheme"])

		require.NoError(t, proto.Apply(doc, prts, Message{Command: CommandSelectPrevious, Args: []string{"scheme"}}))
		require.NoError(t, proto.Apply(doc, prts, Message{Command: CommandSelectNext, Args: []string{"scheme"}}))
		assert.Equal(t, start, doc.Select["scheme"])
	}
}

func TestAdvanceWraps(t *testing.T) {
	c := []string{"a", "b", "c"}
	assert.Equal(t, "a", advance(c, "c", 1))
	assert.Equal(t, "c", advance(c, "a", -1))
	assert.Equal(t, "a", advance(c, "", 1), "unset counts as last")
	assert.Equal(t, "b", advance(c, "", -1))
	assert.Equal(t, "a", advance(c, "gone", 1))
	assert.Equal(t, "c", advance(c, "gone", -1))
	assert.Equal(t, "a", advance([]string{"a"}, "a", 1))
}

func TestSelectRequiresCandidate(t *testing.T) {
	prts := fixturePartials(t, map[string]string{"scheme.dark.conf": "x\n"})
	proto := NewProtocol()
	doc := NewDocument()

	err := proto.Apply(doc, prts, Message{Command: CommandSelect, Args: []string{"scheme", "light"}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategorySelection))
	assert.Contains(t, err.Error(), "light")
	assert.Empty(t, doc.Select)

	err = proto.Apply(doc, prts, Message{Command: CommandSelectNext, Args: []string{"font"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "font")
}

func TestSetAndDelete(t *testing.T) {
	proto := NewProtocol()
	doc := NewDocument()

	require.NoError(t, proto.Apply(doc, nil, Message{Command: CommandSet, Args: []string{"gaps", "10"}}))
	assert.Equal(t, "10", doc.Set["gaps"])

	require.NoError(t, proto.Apply(doc, nil, Message{Command: CommandSet, Args: []string{"gaps", "DEL"}}))
	assert.NotContains(t, doc.Set, "gaps")

	require.NoError(t, proto.Apply(doc, nil, Message{Command: CommandSet, Args: []string{"gaps", "del"}}),
		"deleting an absent key is a no-op")
}
