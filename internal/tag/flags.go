package tag

import "strings"

// GlobeFlag is used when a label carries no known country code.
const GlobeFlag = "🌎"

var countryFlags = map[string]string{
	"US": "🇺🇸", "SG": "🇸🇬", "ID": "🇮🇩", "JP": "🇯🇵", "DE": "🇩🇪",
	"FR": "🇫🇷", "UK": "🇬🇧", "GB": "🇬🇧", "CA": "🇨🇦", "AU": "🇦🇺",
	"NL": "🇳🇱", "KR": "🇰🇷", "HK": "🇭🇰", "TW": "🇹🇼", "IN": "🇮🇳",
	"BR": "🇧🇷", "RU": "🇷🇺", "SE": "🇸🇪", "FI": "🇫🇮", "CH": "🇨🇭",
	"AR": "🇦🇷",
}

// Flag returns the flag emoji for a two-letter country code.
func Flag(code string) string {
	if flag, ok := countryFlags[strings.ToUpper(code)]; ok {
		return flag
	}
	return GlobeFlag
}
