// Package catalog assembles the outbounds array of a sing-box configuration:
// it merges converted proxy outbounds with the template's own outbounds and
// the default sinks, then recomputes the member lists of selector and
// urltest groups against the final set of tags.
package catalog

// Catalog is the ordered list of outbound nodes that ends up in the output
// document. A Catalog is never modified in place.
type Catalog struct {
	nodes []Node
	index map[string]int
}

// New builds a catalog over nodes. For duplicate tags the first node wins
// lookups.
func New(nodes []Node) Catalog {
	c := Catalog{
		nodes: make([]Node, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}
	copy(c.nodes, nodes)
	for i, n := range c.nodes {
		if !n.HasTag() {
			continue
		}
		if _, exists := c.index[n.Tag()]; !exists {
			c.index[n.Tag()] = i
		}
	}
	return c
}

// Nodes returns a copy of the catalog's nodes in order.
func (c Catalog) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

func (c Catalog) Len() int { return len(c.nodes) }

// Has reports whether a node with the given tag exists.
func (c Catalog) Has(tag string) bool {
	_, ok := c.index[tag]
	return ok
}

// Lookup returns the first node carrying tag.
func (c Catalog) Lookup(tag string) (Node, bool) {
	i, ok := c.index[tag]
	if !ok {
		return Node{}, false
	}
	return c.nodes[i], true
}

// Tags returns the tags of all tagged nodes in catalog order.
func (c Catalog) Tags() []string {
	tags := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		if n.HasTag() {
			tags = append(tags, n.Tag())
		}
	}
	return tags
}
