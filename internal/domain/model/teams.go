package model

import "strings"

// TeamInfo is the static identity record for a league club: a stable
// identifier plus display attributes. Lookup is by canonical ID or exact
// (case-insensitive) name, never by substring matching.
type TeamInfo struct {
	ID    string // canonical identifier, e.g. "manchester-united"
	Name  string // display name as reported by the provider
	Short string // three-letter abbreviation
	Color string // primary kit color, hex
}

// leagueTeams is the static registry for the current Premier League season.
var leagueTeams = []TeamInfo{
	{ID: "arsenal", Name: "Arsenal", Short: "ARS", Color: "#EF0107"},
	{ID: "aston-villa", Name: "Aston Villa", Short: "AVL", Color: "#95BFE5"},
	{ID: "bournemouth", Name: "Bournemouth", Short: "BOU", Color: "#DA291C"},
	{ID: "brentford", Name: "Brentford", Short: "BRE", Color: "#E30613"},
	{ID: "brighton", Name: "Brighton", Short: "BHA", Color: "#0057B8"},
	{ID: "burnley", Name: "Burnley", Short: "BUR", Color: "#6C1D45"},
	{ID: "chelsea", Name: "Chelsea", Short: "CHE", Color: "#034694"},
	{ID: "crystal-palace", Name: "Crystal Palace", Short: "CRY", Color: "#1B458F"},
	{ID: "everton", Name: "Everton", Short: "EVE", Color: "#003399"},
	{ID: "fulham", Name: "Fulham", Short: "FUL", Color: "#000000"},
	{ID: "liverpool", Name: "Liverpool", Short: "LIV", Color: "#C8102E"},
	{ID: "luton-town", Name: "Luton Town", Short: "LUT", Color: "#F78F1E"},
	{ID: "manchester-city", Name: "Manchester City", Short: "MCI", Color: "#6CABDD"},
	{ID: "manchester-united", Name: "Manchester United", Short: "MUN", Color: "#DA291C"},
	{ID: "newcastle-united", Name: "Newcastle United", Short: "NEW", Color: "#241F20"},
	{ID: "nottingham-forest", Name: "Nottingham Forest", Short: "NFO", Color: "#DD0000"},
	{ID: "sheffield-united", Name: "Sheffield United", Short: "SHU", Color: "#EE2737"},
	{ID: "tottenham", Name: "Tottenham", Short: "TOT", Color: "#132257"},
	{ID: "west-ham", Name: "West Ham", Short: "WHU", Color: "#7A263A"},
	{ID: "wolves", Name: "Wolves", Short: "WOL", Color: "#FDB913"},
}

var (
	teamsByID   = make(map[string]TeamInfo, len(leagueTeams))
	teamsByName = make(map[string]TeamInfo, len(leagueTeams))
)

func init() {
	for _, t := range leagueTeams {
		teamsByID[t.ID] = t
		teamsByName[strings.ToLower(t.Name)] = t
	}
}

// Teams returns the static league registry in declaration order.
func Teams() []TeamInfo {
	out := make([]TeamInfo, len(leagueTeams))
	copy(out, leagueTeams)
	return out
}

// TeamByID looks up a club by canonical identifier.
func TeamByID(id string) (TeamInfo, bool) {
	t, ok := teamsByID[id]
	return t, ok
}

// TeamByName looks up a club by display name, case-insensitively.
func TeamByName(name string) (TeamInfo, bool) {
	t, ok := teamsByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}
