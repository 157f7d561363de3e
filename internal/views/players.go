package views

import (
	"sort"
	"strconv"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
)

// TopByPrice returns the n most expensive players, optionally filtered by
// element type (0 = all positions). Price ties break by descending total
// points.
func TopByPrice(boot *fpl.Bootstrap, elementType, n int) []fpl.Element {
	if n < 1 {
		n = 1
	}

	players := make([]fpl.Element, 0, len(boot.Elements))
	for _, e := range boot.Elements {
		if elementType != 0 && e.ElementType != elementType {
			continue
		}
		players = append(players, e)
	}

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].NowCost != players[j].NowCost {
			return players[i].NowCost > players[j].NowCost
		}
		return players[i].TotalPoints > players[j].TotalPoints
	})

	if len(players) > n {
		players = players[:n]
	}
	return players
}

// UnavailabilityReport buckets unavailable players by status code
type UnavailabilityReport struct {
	InjuredDoubtful []fpl.Element `json:"injured_doubtful"`
	Suspended       []fpl.Element `json:"suspended"`
	Other           []fpl.Element `json:"other"`
}

// Total returns the number of players across all buckets
func (r *UnavailabilityReport) Total() int {
	return len(r.InjuredDoubtful) + len(r.Suspended) + len(r.Other)
}

// UnavailablePlayers classifies players that are out or at risk. A player
// qualifies when its status is not available, or it carries news text, or,
// when includeDoubtful is set, its chance of playing next round is below 100.
// The sub-100-chance condition is gated on includeDoubtful consistently; the
// other two conditions always qualify.
//
// Within each bucket, players with a non-available status sort first, then by
// descending popularity.
func UnavailablePlayers(boot *fpl.Bootstrap, includeDoubtful bool) *UnavailabilityReport {
	report := &UnavailabilityReport{
		InjuredDoubtful: []fpl.Element{},
		Suspended:       []fpl.Element{},
		Other:           []fpl.Element{},
	}

	for _, e := range boot.Elements {
		if !qualifiesUnavailable(e, includeDoubtful) {
			continue
		}
		switch e.Status {
		case fpl.StatusInjured, fpl.StatusDoubtful:
			report.InjuredDoubtful = append(report.InjuredDoubtful, e)
		case fpl.StatusSuspended:
			report.Suspended = append(report.Suspended, e)
		default:
			report.Other = append(report.Other, e)
		}
	}

	sortUnavailable(report.InjuredDoubtful)
	sortUnavailable(report.Suspended)
	sortUnavailable(report.Other)

	return report
}

func qualifiesUnavailable(e fpl.Element, includeDoubtful bool) bool {
	if e.Status != fpl.StatusAvailable {
		return true
	}
	if e.News != "" {
		return true
	}
	if includeDoubtful && e.ChanceOfPlayingNextRound != nil && *e.ChanceOfPlayingNextRound < 100 {
		return true
	}
	return false
}

func sortUnavailable(players []fpl.Element) {
	sort.SliceStable(players, func(i, j int) bool {
		iAvailable := players[i].Status == fpl.StatusAvailable
		jAvailable := players[j].Status == fpl.StatusAvailable
		if iAvailable != jAvailable {
			return !iAvailable
		}
		return popularity(players[i]) > popularity(players[j])
	})
}

func popularity(e fpl.Element) float64 {
	p, err := strconv.ParseFloat(e.SelectedByPercent, 64)
	if err != nil {
		return 0
	}
	return p
}
