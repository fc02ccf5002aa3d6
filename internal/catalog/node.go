package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	C "github.com/sagernet/sing-box/constant"
)

const (
	keyTag       = "tag"
	keyType      = "type"
	keyOutbounds = "outbounds"
)

type field struct {
	key   string
	value json.RawMessage
}

// Node is one entry of the outbounds array: a JSON object whose keys keep
// the order they had in the template. Nodes are treated as values; the
// With* helpers return modified copies.
type Node struct {
	fields []field
}

// NewNode builds a node from any value that marshals to a JSON object.
func NewNode(v any) (Node, error) {
	data, err := marshal(v)
	if err != nil {
		return Node{}, err
	}
	var n Node
	if err := n.UnmarshalJSON(data); err != nil {
		return Node{}, err
	}
	return n, nil
}

// MustNode is NewNode for static definitions that cannot fail.
func MustNode(v any) Node {
	n, err := NewNode(v)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid node definition: %v", err))
	}
	return n
}

func (n Node) get(key string) (json.RawMessage, bool) {
	for _, f := range n.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func (n Node) stringField(key string) string {
	raw, ok := n.get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Tag returns the node's tag, or "" when it has none.
func (n Node) Tag() string { return n.stringField(keyTag) }

// HasTag reports whether the node carries a string tag.
func (n Node) HasTag() bool {
	raw, ok := n.get(keyTag)
	if !ok {
		return false
	}
	var s *string
	return json.Unmarshal(raw, &s) == nil && s != nil
}

func (n Node) Type() string { return n.stringField(keyType) }

// IsGroup reports whether the node is a selector or urltest.
func (n Node) IsGroup() bool {
	t := n.Type()
	return t == C.TypeSelector || t == C.TypeURLTest
}

// Members returns the outbounds list of a group node. ok is false when the
// node has no outbounds member or it is not an array of strings.
func (n Node) Members() (members []string, ok bool) {
	raw, found := n.get(keyOutbounds)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal(raw, &members); err != nil || members == nil {
		return nil, false
	}
	return members, true
}

// WithMembers returns a copy of the node with its outbounds list replaced.
func (n Node) WithMembers(members []string) Node {
	if members == nil {
		members = []string{}
	}
	raw, _ := marshal(members)
	return n.with(keyOutbounds, raw)
}

func (n Node) with(key string, value json.RawMessage) Node {
	out := Node{fields: make([]field, len(n.fields), len(n.fields)+1)}
	copy(out.fields, n.fields)
	for i := range out.fields {
		if out.fields[i].key == key {
			out.fields[i].value = value
			return out
		}
	}
	out.fields = append(out.fields, field{key: key, value: value})
	return out
}

func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range n.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	n.fields = fields
	return nil
}

// decodeObject reads a JSON object into its fields, preserving order.
// Later duplicates of a key overwrite earlier ones, as encoding/json does.
func decodeObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	fields := []field{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		if i, dup := index[key]; dup {
			fields[i].value = value
			continue
		}
		index[key] = len(fields)
		fields = append(fields, field{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// marshal encodes without HTML escaping so tags such as "a&b" survive.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func mustMarshal(v any) json.RawMessage {
	data, err := marshal(v)
	if err != nil {
		panic(fmt.Sprintf("catalog: cannot encode %T: %v", v, err))
	}
	return data
}
