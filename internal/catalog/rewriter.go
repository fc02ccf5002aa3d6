package catalog

import (
	"slices"

	"go.uber.org/zap"
)

// Rewrite recomputes the member list of every selector and urltest group
// against the catalog's tags. Excluded groups keep their members as they
// are. It returns the rewritten catalog and how many groups changed.
func Rewrite(c Catalog, convertedTags []string, logger *zap.Logger) (Catalog, int) {
	if logger == nil {
		logger = zap.NewNop()
	}

	converted := dedupe(convertedTags)
	nodes := c.Nodes()
	updated := 0

	for i, n := range nodes {
		if !n.IsGroup() {
			continue
		}

		tag := n.Tag()
		if IsExcluded(tag) {
			logger.Info("skipping excluded selector", zap.String("selector", tag))
			continue
		}

		original, ok := n.Members()
		if !ok {
			logger.Debug("skipping selector without outbounds list", zap.String("selector", tag))
			continue
		}

		var members []string
		if IsPrimary(tag) {
			members = primaryMembers(c, tag, converted)
		} else {
			members = groupMembers(c, original, converted)
		}

		if slices.Equal(members, original) {
			logger.Debug("selector unchanged", zap.String("selector", tag))
			continue
		}

		nodes[i] = n.WithMembers(members)
		updated++
		logger.Debug("selector updated",
			zap.String("selector", tag),
			zap.Strings("outbounds", members))
	}

	logger.Info("selector references updated", zap.Int("updated", updated))
	return New(nodes), updated
}

// primaryMembers lists every converted outbound followed by direct. Internet
// additionally leads with Best Latency and Lock Region ID.
func primaryMembers(c Catalog, tag string, converted []string) []string {
	members := slices.Clone(converted)
	if c.Has(TagDirect) && !slices.Contains(members, TagDirect) {
		members = append(members, TagDirect)
	}

	if tag != TagInternet {
		return members
	}

	if c.Has(TagBestLatency) && !slices.Contains(members, TagBestLatency) {
		members = slices.Insert(members, 0, TagBestLatency)
	}
	if c.Has(TagLockRegionID) && !slices.Contains(members, TagLockRegionID) {
		at := 0
		if i := slices.Index(members, TagBestLatency); i >= 0 {
			at = i + 1
		}
		members = slices.Insert(members, at, TagLockRegionID)
	}
	return members
}

// groupMembers keeps the original members that still resolve, then adds
// converted outbounds and the sinks present in the catalog.
func groupMembers(c Catalog, original, converted []string) []string {
	members := make([]string, 0, len(original)+len(converted)+len(sinkTags))
	for _, tag := range original {
		if c.Has(tag) && !slices.Contains(members, tag) {
			members = append(members, tag)
		}
	}
	for _, tag := range converted {
		if !slices.Contains(members, tag) {
			members = append(members, tag)
		}
	}
	for _, tag := range sinkTags {
		if c.Has(tag) && !slices.Contains(members, tag) {
			members = append(members, tag)
		}
	}
	return members
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
