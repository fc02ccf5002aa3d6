package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoOutbounds = errors.New(`template has no "outbounds" array`)

// Document is a parsed configuration template. Top-level keys keep their
// order so everything except outbounds round-trips unchanged.
type Document struct {
	fields []field
}

// ParseDocument parses template JSON and returns the document along with
// its outbound nodes.
func ParseDocument(data []byte) (*Document, []Node, error) {
	if !json.Valid(data) {
		return nil, nil, fmt.Errorf("invalid template json")
	}
	fields, err := decodeObject(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid template json: %w", err)
	}

	doc := &Document{fields: fields}
	raw, ok := doc.get(keyOutbounds)
	if !ok {
		return nil, nil, ErrNoOutbounds
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, nil, ErrNoOutbounds
	}

	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		var n Node
		if err := n.UnmarshalJSON(item); err != nil {
			return nil, nil, fmt.Errorf("outbounds[%d] is not an object: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return doc, nodes, nil
}

func (d *Document) get(key string) (json.RawMessage, bool) {
	for _, f := range d.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Render returns the document with outbounds replaced by the catalog,
// indented with two spaces.
func (d *Document) Render(c Catalog) ([]byte, error) {
	outbounds, err := marshal(c.Nodes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbounds: %w", err)
	}

	compact := Node{fields: d.fields}.with(keyOutbounds, outbounds)
	data, err := compact.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	return out.Bytes(), nil
}
