package views

import (
	"fmt"
	"sort"
	"time"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
)

// DefaultGameweekWindow is the number of gameweeks aggregated when the caller
// does not specify one
const DefaultGameweekWindow = 5

const maxGameweekWindow = 10

// FixtureEntry is one upcoming fixture from a single team's perspective
type FixtureEntry struct {
	Gameweek   int        `json:"gameweek"`
	Opponent   string     `json:"opponent"`
	Difficulty int        `json:"difficulty"`
	Home       bool       `json:"home"`
	Kickoff    *time.Time `json:"kickoff,omitempty"`
}

// TeamFixtures aggregates a team's upcoming fixtures and their mean difficulty
type TeamFixtures struct {
	TeamID            int            `json:"team_id"`
	TeamShort         string         `json:"team_short"`
	Fixtures          []FixtureEntry `json:"fixtures"`
	AverageDifficulty string         `json:"average_difficulty"`
}

// CurrentGameweek returns the active gameweek, falling back to the next one,
// falling back to the first unfinished one. Nil when every event is finished.
func CurrentGameweek(boot *fpl.Bootstrap) *fpl.Event {
	for i := range boot.Events {
		if boot.Events[i].IsCurrent {
			return &boot.Events[i]
		}
	}
	for i := range boot.Events {
		if boot.Events[i].IsNext {
			return &boot.Events[i]
		}
	}
	for i := range boot.Events {
		if !boot.Events[i].Finished {
			return &boot.Events[i]
		}
	}
	return nil
}

// FixtureDifficulty aggregates unfinished fixtures over a gameweek window
// starting at the current or next gameweek. teamIDs narrows the result to the
// given teams; empty means all teams. Each fixture contributes one entry to
// both sides' lists, with that side's own difficulty rating.
func FixtureDifficulty(boot *fpl.Bootstrap, fixtures []fpl.Fixture, teamIDs []int, window int) []TeamFixtures {
	if window < 1 {
		window = DefaultGameweekWindow
	}
	if window > maxGameweekWindow {
		window = maxGameweekWindow
	}

	start := 0
	if gw := CurrentGameweek(boot); gw != nil {
		start = gw.ID
	}
	end := start + window - 1

	wanted := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = true
	}
	include := func(teamID int) bool {
		return len(wanted) == 0 || wanted[teamID]
	}

	byTeam := make(map[int][]FixtureEntry)
	for _, f := range fixtures {
		if f.Finished || f.Event == nil {
			continue
		}
		if *f.Event < start || *f.Event > end {
			continue
		}

		if include(f.TeamH) {
			byTeam[f.TeamH] = append(byTeam[f.TeamH], FixtureEntry{
				Gameweek:   *f.Event,
				Opponent:   TeamShortLabel(boot, f.TeamA),
				Difficulty: f.TeamHDifficulty,
				Home:       true,
				Kickoff:    f.KickoffTime,
			})
		}
		if include(f.TeamA) {
			byTeam[f.TeamA] = append(byTeam[f.TeamA], FixtureEntry{
				Gameweek:   *f.Event,
				Opponent:   TeamShortLabel(boot, f.TeamH),
				Difficulty: f.TeamADifficulty,
				Home:       false,
				Kickoff:    f.KickoffTime,
			})
		}
	}

	results := make([]TeamFixtures, 0, len(byTeam))
	for teamID, entries := range byTeam {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Gameweek < entries[j].Gameweek
		})

		total := 0
		for _, entry := range entries {
			total += entry.Difficulty
		}
		average := float64(total) / float64(len(entries))

		results = append(results, TeamFixtures{
			TeamID:            teamID,
			TeamShort:         TeamShortLabel(boot, teamID),
			Fixtures:          entries,
			AverageDifficulty: fmt.Sprintf("%.1f", average),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TeamID < results[j].TeamID
	})

	return results
}
