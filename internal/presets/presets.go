// Package presets holds the module-level configuration data treated
// as read-only: the default sport list and the state→bookmaker licensing
// presets. Plain Go maps, no config file format invented.
package presets

import "strings"

// DefaultSports is the explicit four-sport default used when no sport
// list is configured.
var DefaultSports = []string{
	"americanfootball_nfl",
	"basketball_nba",
	"baseball_mlb",
	"icehockey_nhl",
}

// StateBookmakers maps a two-letter state code to the bookmakers licensed
// there that also appear on the odds source. Offshore books (Bovada,
// MyBookie, BetOnline, LowVig, BetUS) are excluded from every preset —
// they cannot legally be bet at from the US.
var StateBookmakers = map[string][]string{
	"ny": {"fanduel", "draftkings", "betmgm", "caesars"},
	"nj": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "unibet"},
	"pa": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "unibet", "barstool"},
	"il": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "barstool"},
	"nv": {"fanduel", "draftkings", "betmgm", "caesars"},
	"mi": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "barstool"},
	"oh": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "barstool"},
	"co": {"fanduel", "draftkings", "betmgm", "caesars", "betrivers", "barstool"},
}

// ResolveState returns the bookmaker preset for a two-letter state code.
func ResolveState(code string) ([]string, bool) {
	books, ok := StateBookmakers[strings.ToLower(strings.TrimSpace(code))]
	return books, ok
}
