package views_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
	"github.com/stitts-dev/fpl-data-service/internal/views"
)

func testBootstrap() *fpl.Bootstrap {
	return &fpl.Bootstrap{
		Events: []fpl.Event{
			{ID: 1, Name: "Gameweek 1", Finished: true},
			{ID: 2, Name: "Gameweek 2", IsCurrent: true},
			{ID: 3, Name: "Gameweek 3", IsNext: true},
		},
		Teams: []fpl.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS"},
			{ID: 2, Name: "Chelsea", ShortName: "CHE"},
		},
		Elements: []fpl.Element{
			{
				ID: 10, WebName: "Saka", Team: 1, ElementType: 3,
				NowCost: 90, Status: "a", SelectedByPercent: "45.2", TotalPoints: 180,
			},
			{
				ID: 20, WebName: "Palmer", Team: 2, ElementType: 3,
				NowCost: 65, Status: "a", SelectedByPercent: "30.0", TotalPoints: 150,
			},
		},
	}
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "£7.2", views.PriceLabel(72))
	assert.Equal(t, "£10.0", views.PriceLabel(100))
	assert.Equal(t, "£4.5", views.PriceLabel(45))
	assert.Equal(t, "£0.0", views.PriceLabel(0))
}

func TestTeamShortLabel(t *testing.T) {
	boot := testBootstrap()

	assert.Equal(t, "ARS", views.TeamShortLabel(boot, 1))
	assert.Equal(t, "CHE", views.TeamShortLabel(boot, 2))

	// Unknown ids get a synthetic label, never an error
	assert.Equal(t, "T99", views.TeamShortLabel(boot, 99))
}

func TestPositionShortLabel(t *testing.T) {
	assert.Equal(t, "GKP", views.PositionShortLabel(1))
	assert.Equal(t, "DEF", views.PositionShortLabel(2))
	assert.Equal(t, "MID", views.PositionShortLabel(3))
	assert.Equal(t, "FWD", views.PositionShortLabel(4))
	assert.Equal(t, "", views.PositionShortLabel(0))
	assert.Equal(t, "", views.PositionShortLabel(5))
}

func TestTopByPrice(t *testing.T) {
	boot := testBootstrap()

	t.Run("sorted descending and truncated", func(t *testing.T) {
		top := views.TopByPrice(boot, 3, 1)
		require.Len(t, top, 1)
		assert.Equal(t, 10, top[0].ID)
	})

	t.Run("all positions", func(t *testing.T) {
		top := views.TopByPrice(boot, 0, 10)
		require.Len(t, top, 2)
		assert.Equal(t, 10, top[0].ID)
		assert.Equal(t, 20, top[1].ID)
	})

	t.Run("price ties break by total points", func(t *testing.T) {
		boot := &fpl.Bootstrap{
			Elements: []fpl.Element{
				{ID: 1, ElementType: 3, NowCost: 80, TotalPoints: 50},
				{ID: 2, ElementType: 3, NowCost: 80, TotalPoints: 120},
				{ID: 3, ElementType: 3, NowCost: 95, TotalPoints: 10},
			},
		}
		top := views.TopByPrice(boot, 3, 3)
		require.Len(t, top, 3)
		assert.Equal(t, []int{3, 2, 1}, []int{top[0].ID, top[1].ID, top[2].ID})
	})

	t.Run("never exceeds requested count", func(t *testing.T) {
		assert.Len(t, views.TopByPrice(boot, 0, 1), 1)
	})
}

func TestCurrentGameweek(t *testing.T) {
	t.Run("prefers current", func(t *testing.T) {
		gw := views.CurrentGameweek(testBootstrap())
		require.NotNil(t, gw)
		assert.Equal(t, 2, gw.ID)
	})

	t.Run("falls back to next", func(t *testing.T) {
		boot := testBootstrap()
		boot.Events[1].IsCurrent = false
		gw := views.CurrentGameweek(boot)
		require.NotNil(t, gw)
		assert.Equal(t, 3, gw.ID)
	})

	t.Run("falls back to first unfinished", func(t *testing.T) {
		boot := testBootstrap()
		boot.Events[1].IsCurrent = false
		boot.Events[2].IsNext = false
		gw := views.CurrentGameweek(boot)
		require.NotNil(t, gw)
		assert.Equal(t, 2, gw.ID)
	})

	t.Run("nil when season is over", func(t *testing.T) {
		boot := &fpl.Bootstrap{Events: []fpl.Event{{ID: 1, Finished: true}}}
		assert.Nil(t, views.CurrentGameweek(boot))
	})
}

func intPtr(i int) *int { return &i }

func TestFixtureDifficulty(t *testing.T) {
	boot := testBootstrap()
	kickoff := time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)

	fixtures := []fpl.Fixture{
		// In window: ARS home to CHE
		{ID: 1, Event: intPtr(2), TeamH: 1, TeamA: 2, TeamHDifficulty: 4, TeamADifficulty: 3, KickoffTime: &kickoff},
		// In window, next gameweek
		{ID: 2, Event: intPtr(3), TeamH: 2, TeamA: 1, TeamHDifficulty: 2, TeamADifficulty: 5},
		// Finished fixtures are excluded
		{ID: 3, Event: intPtr(2), TeamH: 1, TeamA: 2, TeamHDifficulty: 1, TeamADifficulty: 1, Finished: true},
		// Outside the window
		{ID: 4, Event: intPtr(9), TeamH: 1, TeamA: 2, TeamHDifficulty: 1, TeamADifficulty: 1},
		// Unscheduled fixtures are excluded
		{ID: 5, Event: nil, TeamH: 1, TeamA: 2, TeamHDifficulty: 1, TeamADifficulty: 1},
	}

	t.Run("aggregates both sides within window", func(t *testing.T) {
		results := views.FixtureDifficulty(boot, fixtures, nil, 5)
		require.Len(t, results, 2)

		arsenal := results[0]
		assert.Equal(t, 1, arsenal.TeamID)
		assert.Equal(t, "ARS", arsenal.TeamShort)
		require.Len(t, arsenal.Fixtures, 2)
		assert.True(t, arsenal.Fixtures[0].Home)
		assert.Equal(t, "CHE", arsenal.Fixtures[0].Opponent)
		assert.Equal(t, 4, arsenal.Fixtures[0].Difficulty)
		assert.False(t, arsenal.Fixtures[1].Home)
		assert.Equal(t, 5, arsenal.Fixtures[1].Difficulty)
		// (4 + 5) / 2, one decimal place
		assert.Equal(t, "4.5", arsenal.AverageDifficulty)

		chelsea := results[1]
		assert.Equal(t, "CHE", chelsea.TeamShort)
		assert.Equal(t, "2.5", chelsea.AverageDifficulty)
	})

	t.Run("narrow window", func(t *testing.T) {
		results := views.FixtureDifficulty(boot, fixtures, nil, 1)
		require.Len(t, results, 2)
		require.Len(t, results[0].Fixtures, 1)
		assert.Equal(t, 2, results[0].Fixtures[0].Gameweek)
		assert.Equal(t, "4.0", results[0].AverageDifficulty)
	})

	t.Run("team filter", func(t *testing.T) {
		results := views.FixtureDifficulty(boot, fixtures, []int{2}, 5)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].TeamID)
	})

	t.Run("kickoff carried through", func(t *testing.T) {
		results := views.FixtureDifficulty(boot, fixtures, []int{1}, 1)
		require.Len(t, results, 1)
		require.NotNil(t, results[0].Fixtures[0].Kickoff)
		assert.True(t, results[0].Fixtures[0].Kickoff.Equal(kickoff))
	})
}

func TestUnavailablePlayers(t *testing.T) {
	chance := 75
	full := 100
	boot := &fpl.Bootstrap{
		Elements: []fpl.Element{
			{ID: 1, WebName: "Injured", Status: "i", News: "Knee injury", SelectedByPercent: "10.0"},
			{ID: 2, WebName: "Doubtful", Status: "d", News: "Knock", SelectedByPercent: "20.0"},
			{ID: 3, WebName: "Suspended", Status: "s", News: "Red card", SelectedByPercent: "5.0"},
			{ID: 4, WebName: "Transferred", Status: "u", News: "Left the club", SelectedByPercent: "1.0"},
			{ID: 5, WebName: "NewsOnly", Status: "a", News: "Minor knock", SelectedByPercent: "8.0", ChanceOfPlayingNextRound: &full},
			{ID: 6, WebName: "ChanceOnly", Status: "a", News: "", SelectedByPercent: "15.0", ChanceOfPlayingNextRound: &chance},
			{ID: 7, WebName: "Healthy", Status: "a", News: "", SelectedByPercent: "40.0", ChanceOfPlayingNextRound: &full},
		},
	}

	t.Run("doubtful included", func(t *testing.T) {
		report := views.UnavailablePlayers(boot, true)

		var injuredIDs []int
		for _, p := range report.InjuredDoubtful {
			injuredIDs = append(injuredIDs, p.ID)
		}
		assert.ElementsMatch(t, []int{1, 2}, injuredIDs)

		require.Len(t, report.Suspended, 1)
		assert.Equal(t, 3, report.Suspended[0].ID)

		var otherIDs []int
		for _, p := range report.Other {
			otherIDs = append(otherIDs, p.ID)
		}
		assert.ElementsMatch(t, []int{4, 5, 6}, otherIDs)
		assert.Equal(t, 6, report.Total())
	})

	t.Run("doubtful excluded drops sub-100-chance only", func(t *testing.T) {
		report := views.UnavailablePlayers(boot, false)

		var otherIDs []int
		for _, p := range report.Other {
			otherIDs = append(otherIDs, p.ID)
		}
		// NewsOnly still qualifies through its news text; ChanceOnly does not
		assert.ElementsMatch(t, []int{4, 5}, otherIDs)
		assert.Equal(t, 5, report.Total())
	})

	t.Run("healthy players never qualify", func(t *testing.T) {
		report := views.UnavailablePlayers(boot, true)
		for _, bucket := range [][]fpl.Element{report.InjuredDoubtful, report.Suspended, report.Other} {
			for _, p := range bucket {
				assert.NotEqual(t, 7, p.ID)
			}
		}
	})

	t.Run("non-available status sorts first", func(t *testing.T) {
		report := views.UnavailablePlayers(boot, true)
		require.Len(t, report.Other, 3)
		// Transferred has status "u"; the two status-"a" entries follow by popularity
		assert.Equal(t, 4, report.Other[0].ID)
		assert.Equal(t, 6, report.Other[1].ID)
		assert.Equal(t, 5, report.Other[2].ID)
	})
}
