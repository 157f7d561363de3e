// Package search implements fuzzy player resolution over a bootstrap snapshot:
// accent-insensitive normalization, hard pre-filters, additive scoring, and
// deterministic ranking.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
)

// DefaultLimit is the result count when the caller does not specify one
const DefaultLimit = 10

// Filters are the optional hard filters applied before scoring
type Filters struct {
	// Position accepts the numeric element type or its short-code alias
	// (GKP, DEF, MID, FWD), case-insensitive
	Position string
	// Team accepts a numeric team id, short code, or full name
	Team string
	// Limit truncates the ranked result; 0 means DefaultLimit
	Limit int
}

var positionAliases = map[string]int{
	"gkp": fpl.PositionGoalkeeper,
	"def": fpl.PositionDefender,
	"mid": fpl.PositionMidfielder,
	"fwd": fpl.PositionForward,
}

// ParsePosition resolves a position filter value to an element type code
func ParsePosition(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, ok := positionAliases[s]; ok {
		return code, true
	}
	if code, err := strconv.Atoi(s); err == nil &&
		code >= fpl.PositionGoalkeeper && code <= fpl.PositionForward {
		return code, true
	}
	return 0, false
}

// ResolveTeam resolves a team filter value to a team id using the snapshot's
// team records. Matching on short code and full name is case- and
// diacritic-insensitive exact.
func ResolveTeam(boot *fpl.Bootstrap, s string) (int, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, true
	}
	normalized := Normalize(s)
	for _, t := range boot.Teams {
		if Normalize(t.ShortName) == normalized || Normalize(t.Name) == normalized {
			return t.ID, true
		}
	}
	return 0, false
}

// scored pairs a candidate with its match score for ranking
type scored struct {
	element fpl.Element
	score   float64
}

// Search scores every candidate against the normalized query, ranks them
// descending, and returns the top results. An empty normalized query yields
// an empty result, never an error. Repeated calls on an unchanged snapshot
// return an identical ordered sequence.
func Search(boot *fpl.Bootstrap, query string, filters Filters) []fpl.Element {
	q := Normalize(query)
	if q == "" {
		return []fpl.Element{}
	}

	limit := filters.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}

	positionFilter := 0
	if filters.Position != "" {
		code, ok := ParsePosition(filters.Position)
		if !ok {
			return []fpl.Element{}
		}
		positionFilter = code
	}

	teamFilter := 0
	if filters.Team != "" {
		id, ok := ResolveTeam(boot, filters.Team)
		if !ok {
			return []fpl.Element{}
		}
		teamFilter = id
	}

	tokens := strings.Fields(q)

	candidates := make([]scored, 0, 16)
	for _, e := range boot.Elements {
		if positionFilter != 0 && e.ElementType != positionFilter {
			continue
		}
		if teamFilter != 0 && e.Team != teamFilter {
			continue
		}

		score := scoreCandidate(e, q, tokens)
		if score <= 0 {
			continue
		}

		candidates = append(candidates, scored{element: e, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].element.TotalPoints > candidates[j].element.TotalPoints
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]fpl.Element, len(candidates))
	for i, c := range candidates {
		results[i] = c.element
	}
	return results
}

// ResolveOne returns the single best match for a free-text name, or nil when
// nothing matches. Absence is a valid outcome, not an error.
func ResolveOne(boot *fpl.Bootstrap, name string) *fpl.Element {
	results := Search(boot, name, Filters{Limit: 1})
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// FindByID returns the player with the given id, or nil when unknown
func FindByID(boot *fpl.Bootstrap, id int) *fpl.Element {
	for i := range boot.Elements {
		if boot.Elements[i].ID == id {
			return &boot.Elements[i]
		}
	}
	return nil
}

// scoreCandidate applies the additive scoring ladder. Candidates without any
// match signal score zero; tiebreakers only apply on top of a real match.
func scoreCandidate(e fpl.Element, q string, tokens []string) float64 {
	short := Normalize(e.WebName)
	full := Normalize(e.FullName())
	last := Normalize(e.SecondName)

	base := 0
	if short == q {
		base += 100
	}
	if full == q {
		base += 90
	}
	if last == q {
		base += 85
	}
	if strings.HasPrefix(short, q) {
		base += 60
	}
	if strings.HasPrefix(last, q) {
		base += 55
	}
	if strings.HasPrefix(full, q) {
		base += 50
	}
	for _, token := range tokens {
		if strings.Contains(short, token) || strings.Contains(full, token) || strings.Contains(last, token) {
			base += 10
		}
	}

	if base == 0 {
		return 0
	}

	score := float64(base)

	if popularity, err := strconv.ParseFloat(e.SelectedByPercent, 64); err == nil {
		score += minFloat(10, popularity/5)
	}
	score += minFloat(10, float64(e.TotalPoints)/50)

	return score
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
