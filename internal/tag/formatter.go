// Package tag derives display tags for converted outbounds.
//
// A tag looks like "🇸🇬 NodeA #3": the flag of the country code found at
// the start of the link's label, the cleaned-up label, and the ordinal of
// the link among the successfully decoded ones. The ordinal makes tags
// unique within a conversion even when labels repeat.
package tag

import (
	"fmt"
	"regexp"
	"strings"

	"singbox-converter/internal/domain"
)

var (
	countryPrefix = regexp.MustCompile(`^([A-Za-z]{2})\s*-\s*(.*)`)
	bracketed     = regexp.MustCompile(`\s*\[.*?\]\s*`)
)

var genericPrefixes = []string{"vmess", "vless", "trojan", "node"}

// Format builds the tag for a decoded link. ordinal starts at 1.
func Format(link domain.DecodedLink, ordinal int) string {
	return FormatName(link.Base().DisplayName, ordinal)
}

// FormatName applies the tag rules to a raw display name.
func FormatName(displayName string, ordinal int) string {
	name := displayName
	code := ""

	if m := countryPrefix.FindStringSubmatch(name); m != nil {
		code = strings.ToUpper(m[1])
		name = strings.TrimSpace(m[2])
	}

	name = strings.TrimSpace(bracketed.ReplaceAllString(name, " "))

	if name == "" || hasGenericPrefix(name) {
		name = strings.TrimSpace(strings.ReplaceAll(displayName, "_", " "))
	}

	return strings.TrimSpace(fmt.Sprintf("%s %s #%d", Flag(code), name, ordinal))
}

func hasGenericPrefix(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range genericPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
