// Package views provides stateless projections of a snapshot: labels,
// top-by-price listings, fixture-difficulty aggregation, and availability
// classification. Every builder is total over a valid snapshot.
package views

import (
	"fmt"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
)

// PriceLabel renders a now_cost value (tenths of a million) as a price string
func PriceLabel(nowCost int) string {
	return fmt.Sprintf("£%.1f", float64(nowCost)/10.0)
}

// TeamShortLabel returns the team's short code, or a synthetic T<id> label
// when the team id is unknown
func TeamShortLabel(boot *fpl.Bootstrap, teamID int) string {
	if team := boot.TeamByID(teamID); team != nil {
		return team.ShortName
	}
	return fmt.Sprintf("T%d", teamID)
}

var positionLabels = map[int]string{
	fpl.PositionGoalkeeper: "GKP",
	fpl.PositionDefender:   "DEF",
	fpl.PositionMidfielder: "MID",
	fpl.PositionForward:    "FWD",
}

// PositionShortLabel returns the short code for an element type; unknown
// codes yield an empty label
func PositionShortLabel(elementType int) string {
	return positionLabels[elementType]
}
