package catalog

import (
	"slices"

	C "github.com/sagernet/sing-box/constant"
)

const (
	TagInternet     = "Internet"
	TagBestLatency  = "Best Latency"
	TagLockRegionID = "Lock Region ID"

	TagDirect = "direct"
	TagBypass = "bypass"
	TagBlock  = "block"
	TagDNSOut = "dns-out"
)

const (
	HealthCheckURL      = "https://www.gstatic.com/generate_204"
	HealthCheckInterval = "30s"
)

var primarySelectors = []string{TagInternet, TagBestLatency, TagLockRegionID}

// Groups whose member lists are never rewritten. Matching is by exact tag.
var excludedSelectors = []string{
	"WhatsApp",
	"GAMESMAX(ML/FF/AOV)",
	"Route Port Game",
	"Option ADs",
	"Option P0rn",
}

var sinkTags = []string{TagDirect, TagBypass, TagBlock, TagDNSOut}

type sinkDef struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

var sinkDefs = map[string]sinkDef{
	TagDirect: {Type: C.TypeDirect, Tag: TagDirect},
	TagBypass: {Type: C.TypeDirect, Tag: TagBypass},
	TagBlock:  {Type: C.TypeBlock, Tag: TagBlock},
	TagDNSOut: {Type: C.TypeDNS, Tag: TagDNSOut},
}

type groupDef struct {
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Outbounds []string `json:"outbounds"`
	URL       string   `json:"url,omitempty"`
	Interval  string   `json:"interval,omitempty"`
}

// PrimarySelectors returns the groups that always receive every converted
// outbound.
func PrimarySelectors() []string { return slices.Clone(primarySelectors) }

// ExcludedSelectors returns the groups whose members are left untouched.
func ExcludedSelectors() []string { return slices.Clone(excludedSelectors) }

// InitialSelectors returns the groups placed at the head of the catalog.
func InitialSelectors() []string {
	return slices.Concat(primarySelectors, excludedSelectors)
}

// SinkTags returns the default sink tags in the order they are appended.
func SinkTags() []string { return slices.Clone(sinkTags) }

func IsExcluded(tag string) bool { return slices.Contains(excludedSelectors, tag) }

func IsPrimary(tag string) bool { return slices.Contains(primarySelectors, tag) }

func IsSink(tag string) bool { return slices.Contains(sinkTags, tag) }

func sinkNode(tag string) Node {
	return MustNode(sinkDefs[tag])
}

// placeholder synthesizes an initial group missing from the template.
func placeholder(tag string) Node {
	switch tag {
	case TagInternet:
		return MustNode(groupDef{
			Type:      C.TypeSelector,
			Tag:       TagInternet,
			Outbounds: []string{TagBestLatency, TagDirect},
		})
	case TagBestLatency:
		return MustNode(groupDef{
			Type:      C.TypeURLTest,
			Tag:       TagBestLatency,
			Outbounds: []string{},
			URL:       HealthCheckURL,
			Interval:  HealthCheckInterval,
		})
	case TagLockRegionID:
		return MustNode(groupDef{
			Type:      C.TypeSelector,
			Tag:       TagLockRegionID,
			Outbounds: []string{},
		})
	default:
		return MustNode(groupDef{
			Type:      C.TypeSelector,
			Tag:       tag,
			Outbounds: []string{TagDirect, TagInternet, TagBestLatency, TagLockRegionID},
		})
	}
}
