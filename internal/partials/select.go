package partials

import (
	"maps"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/util/sets"
)

type selectOptions struct {
	unconditional bool
	defaults      bool
}

// SelectOption tunes Select.
type SelectOption func(*selectOptions)

// WithoutUnconditional leaves unconditional partials out of the selection.
func WithoutUnconditional() SelectOption {
	return func(o *selectOptions) { o.unconditional = false }
}

// WithoutDefaults leaves default partials of unselected keys out of the selection.
func WithoutDefaults() SelectOption {
	return func(o *selectOptions) { o.defaults = false }
}

// Select picks the partials that make up a build, in file name order.
//
// A conditional partial is taken when the selector maps its key to its value, or,
// when its key is not in the selector at all, when it is a default. Keys listed in
// excludes are skipped entirely. Every selector entry must be matched by at least one
// partial, otherwise the selection fails naming the unmatched keys.
func Select(prts []*Partial, selector map[string]string, excludes sets.Set[string], opts ...SelectOption) ([]*Partial, error) {
	o := selectOptions{unconditional: true, defaults: true}
	for _, opt := range opts {
		opt(&o)
	}

	remaining := maps.Clone(selector)
	var selected []*Partial
	for _, p := range Sorted(prts) {
		if !p.Conditional() {
			if o.unconditional {
				selected = append(selected, p)
			}
			continue
		}
		if excludes.Has(p.Key) {
			continue
		}
		if want, ok := selector[p.Key]; ok {
			if want == p.Value {
				selected = append(selected, p)
				delete(remaining, p.Key)
			}
			continue
		}
		if !o.defaults {
			continue
		}
		isDefault, err := p.IsDefault()
		if err != nil {
			return nil, err
		}
		if isDefault {
			selected = append(selected, p)
		}
	}

	if len(remaining) > 0 {
		pairs := make([]string, 0, len(remaining))
		for _, k := range slices.Sorted(maps.Keys(remaining)) {
			pairs = append(pairs, k+"="+remaining[k])
		}
		return nil, ferrors.SelectionError("selector without matching partial").
			WithContext("selectors", strings.Join(pairs, ",")).
			Build()
	}
	return selected, nil
}

// Find returns the first partial with the given key and value.
func Find(prts []*Partial, key, value string) (*Partial, bool) {
	for _, p := range prts {
		if p.Conditional() && p.Key == key && p.Value == value {
			return p, true
		}
	}
	return nil, false
}

// Candidates returns the distinct values available for key, in file name order.
func Candidates(prts []*Partial, key string) []string {
	seen := sets.New[string]()
	var values []string
	for _, p := range Sorted(prts) {
		if !p.Conditional() || p.Key != key || seen.Has(p.Value) {
			continue
		}
		seen.Add(p.Value)
		values = append(values, p.Value)
	}
	return values
}

// Keys returns the distinct conditional keys, sorted.
func Keys(prts []*Partial) []string {
	keys := sets.New[string]()
	for _, p := range prts {
		if p.Conditional() {
			keys.Add(p.Key)
		}
	}
	return sets.Sorted(keys)
}

// Content concatenates the display form of the selected partials.
func Content(prts []*Partial, selector map[string]string, excludes sets.Set[string]) (string, error) {
	selected, err := Select(prts, selector, excludes)
	if err != nil {
		return "", err
	}
	if len(selected) == 0 {
		return "", ferrors.SelectionError("no content selected").
			WithContext("partials", len(prts)).
			Build()
	}
	var b strings.Builder
	for _, p := range selected {
		display, err := p.Display()
		if err != nil {
			return "", err
		}
		b.WriteString(display)
	}
	return b.String(), nil
}
