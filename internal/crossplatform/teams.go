package crossplatform

import "strings"

// teamLookup resolves a contract platform's short team name to the full
// display name used on sportsbook events. Cities whose NBA and NHL teams
// share a short name (e.g. "chicago") resolve ambiguously here; callers
// must consult seriesOverrides first.
var teamLookup = map[string]string{
	"cowboys":    "Dallas Cowboys",
	"eagles":     "Philadelphia Eagles",
	"chiefs":     "Kansas City Chiefs",
	"bills":      "Buffalo Bills",
	"49ers":      "San Francisco 49ers",
	"lakers":     "Los Angeles Lakers",
	"celtics":    "Boston Celtics",
	"warriors":   "Golden State Warriors",
	"bulls":      "Chicago Bulls",
	"blackhawks": "Chicago Blackhawks",
	"chicago":    "Chicago Bulls", // ambiguous: see seriesOverrides for NHL
	"yankees":    "New York Yankees",
	"dodgers":    "Los Angeles Dodgers",
	"rangers":    "New York Rangers",
	"avalanche":  "Colorado Avalanche",
}

// seriesOverrides disambiguates short names that collide across leagues,
// keyed by (series ticker, lowercased short name).
var seriesOverrides = map[string]map[string]string{
	"NBA": {
		"chicago": "Chicago Bulls",
	},
	"NHL": {
		"chicago": "Chicago Blackhawks",
	},
}

// ResolveTeam returns the full team name for shortName under the given
// series ticker, honoring the series-specific override before falling
// back to the general lookup table.
func ResolveTeam(series, shortName string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(shortName))

	if overrides, ok := seriesOverrides[strings.ToUpper(series)]; ok {
		if full, ok := overrides[key]; ok {
			return full, true
		}
	}

	full, ok := teamLookup[key]
	return full, ok
}
