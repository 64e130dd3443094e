package state

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Document is the persisted state.
type Document struct {
	Select map[string]string `json:"select"`
	Set    map[string]string `json:"set"`
}

// NewDocument returns an empty document with both namespaces allocated.
func NewDocument() *Document {
	return &Document{Select: map[string]string{}, Set: map[string]string{}}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := NewDocument()
	maps.Copy(c.Select, d.Select)
	maps.Copy(c.Set, d.Set)
	return c
}

// Selector returns a copy of the select namespace.
func (d *Document) Selector() map[string]string {
	return maps.Clone(d.normalized().Select)
}

func (d *Document) normalized() *Document {
	if d.Select == nil {
		d.Select = map[string]string{}
	}
	if d.Set == nil {
		d.Set = map[string]string{}
	}
	return d
}

// Marshal encodes the document with sorted keys, four space indentation and a
// trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d.normalized(), "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a document, rejecting unknown top-level fields.
func Unmarshal(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, err
	}
	return doc.normalized(), nil
}
