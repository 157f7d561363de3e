package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
	"github.com/stitts-dev/fpl-data-service/internal/search"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase", input: "Saka", expected: "saka"},
		{name: "stroked letter folded", input: "Sørloth", expected: "sorloth"},
		{name: "accents stripped", input: "Raúl Jiménez", expected: "raul jimenez"},
		{name: "hyphen folded", input: "Saint-Maximin", expected: "saint maximin"},
		{name: "apostrophe folded", input: "O'Brien", expected: "o brien"},
		{name: "whitespace collapsed", input: "  Cole   Palmer  ", expected: "cole palmer"},
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: "--", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, search.Normalize(tt.input))
		})
	}
}

func testBootstrap() *fpl.Bootstrap {
	return &fpl.Bootstrap{
		Teams: []fpl.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS"},
			{ID: 2, Name: "Chelsea", ShortName: "CHE"},
		},
		Elements: []fpl.Element{
			{
				ID: 10, FirstName: "Bukayo", SecondName: "Saka", WebName: "Saka",
				Team: 1, ElementType: 3, NowCost: 90, Status: "a",
				SelectedByPercent: "45.2", TotalPoints: 180,
			},
			{
				ID: 20, FirstName: "Cole", SecondName: "Palmer", WebName: "Palmer",
				Team: 2, ElementType: 3, NowCost: 65, Status: "a",
				SelectedByPercent: "30.0", TotalPoints: 150,
			},
			{
				ID: 30, FirstName: "Gabriel", SecondName: "Martinelli", WebName: "Martinelli",
				Team: 1, ElementType: 3, NowCost: 70, Status: "a",
				SelectedByPercent: "12.5", TotalPoints: 90,
			},
			{
				ID: 40, FirstName: "David", SecondName: "Raya", WebName: "Raya",
				Team: 1, ElementType: 1, NowCost: 55, Status: "a",
				SelectedByPercent: "20.1", TotalPoints: 110,
			},
		},
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	boot := testBootstrap()

	assert.Empty(t, search.Search(boot, "", search.Filters{}))
	assert.Empty(t, search.Search(boot, "   ", search.Filters{}))
	assert.Empty(t, search.Search(boot, "--", search.Filters{Position: "MID", Team: "ARS"}))
}

func TestSearchExactShortName(t *testing.T) {
	boot := testBootstrap()

	results := search.Search(boot, "saka", search.Filters{})
	require.NotEmpty(t, results)
	assert.Equal(t, 10, results[0].ID)
}

func TestSearchDiacriticInsensitive(t *testing.T) {
	boot := testBootstrap()
	boot.Elements = append(boot.Elements, fpl.Element{
		ID: 50, FirstName: "Alexander", SecondName: "Sørloth", WebName: "Sørloth",
		Team: 2, ElementType: 4, NowCost: 65, Status: "a",
		SelectedByPercent: "5.0", TotalPoints: 80,
	})

	results := search.Search(boot, "sorloth", search.Filters{})
	require.NotEmpty(t, results)
	assert.Equal(t, 50, results[0].ID)
}

func TestSearchExactMatchOutranksSubstring(t *testing.T) {
	// The exact-match player is far less popular; the ranking must not flip
	boot := &fpl.Bootstrap{
		Elements: []fpl.Element{
			{
				ID: 1, FirstName: "Popular", SecondName: "Grayson", WebName: "Grayson",
				ElementType: 3, Status: "a", SelectedByPercent: "50.0", TotalPoints: 200,
			},
			{
				ID: 2, FirstName: "Obscure", SecondName: "Gray", WebName: "Gray",
				ElementType: 3, Status: "a", SelectedByPercent: "0.1", TotalPoints: 5,
			},
		},
	}

	results := search.Search(boot, "gray", search.Filters{})
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].ID)
}

func TestSearchNoSignalExcluded(t *testing.T) {
	boot := testBootstrap()

	results := search.Search(boot, "zzzz", search.Filters{})
	assert.Empty(t, results)
}

func TestSearchPositionFilter(t *testing.T) {
	boot := testBootstrap()

	tests := []struct {
		name     string
		position string
		expected []int
	}{
		{name: "numeric code", position: "1", expected: []int{40}},
		{name: "short code alias", position: "GKP", expected: []int{40}},
		{name: "lowercase alias", position: "gkp", expected: []int{40}},
		{name: "excludes other positions", position: "FWD", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := search.Search(boot, "raya", search.Filters{Position: tt.position})
			var ids []int
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSearchTeamFilter(t *testing.T) {
	boot := testBootstrap()

	for _, team := range []string{"1", "ARS", "ars", "Arsenal"} {
		results := search.Search(boot, "martinelli", search.Filters{Team: team})
		require.Len(t, results, 1, "team filter %q", team)
		assert.Equal(t, 30, results[0].ID)
	}

	// Hard exclude: Palmer plays for Chelsea
	assert.Empty(t, search.Search(boot, "palmer", search.Filters{Team: "ARS"}))
}

func TestSearchLimit(t *testing.T) {
	boot := testBootstrap()

	// All three outfielders contain "a" in some field via token matching
	results := search.Search(boot, "ma", search.Filters{Limit: 1})
	assert.LessOrEqual(t, len(results), 1)

	// Zero means default, negative clamps to one
	results = search.Search(boot, "saka", search.Filters{Limit: -5})
	assert.Len(t, results, 1)
}

func TestSearchIdempotent(t *testing.T) {
	boot := testBootstrap()

	first := search.Search(boot, "a", search.Filters{})
	second := search.Search(boot, "a", search.Filters{})
	assert.Equal(t, first, second)
}

func TestResolveOneMatchesSearchHead(t *testing.T) {
	boot := testBootstrap()

	resolved := search.ResolveOne(boot, "palmer")
	require.NotNil(t, resolved)

	results := search.Search(boot, "palmer", search.Filters{Limit: 1})
	require.Len(t, results, 1)
	assert.Equal(t, results[0], *resolved)
}

func TestResolveOneAbsent(t *testing.T) {
	boot := testBootstrap()

	assert.Nil(t, search.ResolveOne(boot, "nonexistent player"))
	assert.Nil(t, search.ResolveOne(boot, ""))
}

func TestFindByID(t *testing.T) {
	boot := testBootstrap()

	player := search.FindByID(boot, 20)
	require.NotNil(t, player)
	assert.Equal(t, "Palmer", player.WebName)

	assert.Nil(t, search.FindByID(boot, 999))
}

func TestParsePosition(t *testing.T) {
	for input, expected := range map[string]int{
		"1": 1, "4": 4, "GKP": 1, "def": 2, "Mid": 3, "FWD": 4,
	} {
		code, ok := search.ParsePosition(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, expected, code, "input %q", input)
	}

	for _, input := range []string{"", "0", "5", "striker"} {
		_, ok := search.ParsePosition(input)
		assert.False(t, ok, "input %q", input)
	}
}
