package tag

import (
	"testing"

	"singbox-converter/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFormatName(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		ordinal     int
		expected    string
	}{
		{"country prefix", "US - Seattle", 1, "🇺🇸 Seattle #1"},
		{"generic label keeps country text", "US - Node1", 1, "🇺🇸 US - Node1 #1"},
		{"lowercase country prefix", "sg - NodeA", 2, "🇸🇬 NodeA #2"},
		{"no spaces around dash", "JP-Tokyo", 3, "🇯🇵 Tokyo #3"},
		{"unknown country", "ZZ - Somewhere", 4, "🌎 Somewhere #4"},
		{"UK alias", "UK - London", 5, "🇬🇧 London #5"},
		{"no country", "Fast Server", 6, "🌎 Fast Server #6"},
		{"bracket stripped", "ID - Biznet [VLESS-TLS]", 7, "🇮🇩 Biznet #7"},
		{"bracket in the middle", "DE - Frankfurt [WS] Premium", 8, "🇩🇪 Frankfurt Premium #8"},
		{"generic name falls back to original", "VLESS_Node_1.2.3.4", 9, "🌎 VLESS Node 1.2.3.4 #9"},
		{"generic after country", "US - node_01", 10, "🇺🇸 US - node 01 #10"},
		{"only brackets falls back to original", "[premium]", 11, "🌎 [premium] #11"},
		{"plain Node label", "Node", 12, "🌎 Node #12"},
		{"inner spacing kept", "SG - Foo  Bar", 13, "🇸🇬 Foo  Bar #13"},
		{"spacing around bracket collapsed", "JP - Osaka  [v2]  Fast", 14, "🇯🇵 Osaka Fast #14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatName(tt.displayName, tt.ordinal))
		})
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	link := &domain.VLESSLink{Common: domain.Common{DisplayName: "SG - NodeA"}}
	assert.Equal(t, Format(link, 1), Format(link, 1))
	assert.Equal(t, "🇸🇬 NodeA #1", Format(link, 1))
}

func TestFormatUniqueForSameLabel(t *testing.T) {
	seen := make(map[string]bool)
	for i := 1; i <= 50; i++ {
		tag := FormatName("Node", i)
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "🇺🇸", Flag("us"))
	assert.Equal(t, GlobeFlag, Flag(""))
	assert.Equal(t, GlobeFlag, Flag("XX"))
}
