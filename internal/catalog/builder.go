package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// Build assembles the catalog in four passes: initial groups (copied from
// the template or synthesized), converted outbounds, remaining template
// outbounds, default sinks. It returns the catalog and the warnings raised
// while building it.
func Build(template []Node, converted []Node, logger *zap.Logger) (Catalog, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byTag := make(map[string]Node, len(template))
	for _, n := range template {
		if !n.HasTag() {
			continue
		}
		if _, exists := byTag[n.Tag()]; !exists {
			byTag[n.Tag()] = n
		}
	}

	var (
		nodes    = make([]Node, 0, len(template)+len(converted)+len(sinkTags))
		placed   = make(map[string]bool)
		warnings []string
	)

	for _, tag := range InitialSelectors() {
		if n, ok := byTag[tag]; ok {
			nodes = append(nodes, n)
		} else {
			nodes = append(nodes, placeholder(tag))
			msg := fmt.Sprintf("selector %q not found in template, added a placeholder", tag)
			warnings = append(warnings, msg)
			logger.Warn("selector missing from template, using placeholder",
				zap.String("selector", tag))
		}
		placed[tag] = true
	}

	for _, n := range converted {
		nodes = append(nodes, n)
		placed[n.Tag()] = true
	}

	for _, n := range template {
		if !n.HasTag() {
			nodes = append(nodes, n)
			continue
		}
		tag := n.Tag()
		if placed[tag] || IsSink(tag) {
			continue
		}
		nodes = append(nodes, n)
		placed[tag] = true
	}

	for _, tag := range sinkTags {
		if placed[tag] {
			continue
		}
		if n, ok := byTag[tag]; ok {
			nodes = append(nodes, n)
		} else {
			nodes = append(nodes, sinkNode(tag))
		}
		placed[tag] = true
	}

	logger.Debug("catalog built",
		zap.Int("nodes", len(nodes)),
		zap.Int("converted", len(converted)))

	return New(nodes), warnings
}
