// Package zone classifies table positions into qualification and relegation
// bands. Display-only; zones are derived, never stored.
package zone

// Zone names a band of table positions.
type Zone string

// Band values for a 20-team league.
const (
	ChampionsLeague Zone = "Champions League"
	MidTable        Zone = "mid-table"
	Relegation      Zone = "Relegation"
)

// Band sizes.
const (
	championsLeagueSpots = 4
	relegationSpots      = 3
)

// Classify maps a 1-based position to its band for a league of totalTeams.
// Positions outside 1..totalTeams classify as mid-table.
func Classify(position, totalTeams int) Zone {
	if position < 1 || position > totalTeams {
		return MidTable
	}
	if position <= championsLeagueSpots {
		return ChampionsLeague
	}
	if position > totalTeams-relegationSpots {
		return Relegation
	}
	return MidTable
}

// Title reports whether the position is first place.
func Title(position int) bool {
	return position == 1
}
