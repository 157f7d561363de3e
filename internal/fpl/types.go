package fpl

import (
	"encoding/json"
	"fmt"
	"time"
)

// Position codes used by the FPL API (element_type)
const (
	PositionGoalkeeper = 1
	PositionDefender   = 2
	PositionMidfielder = 3
	PositionForward    = 4
)

// Availability status codes used by the FPL API
const (
	StatusAvailable   = "a"
	StatusDoubtful    = "d"
	StatusInjured     = "i"
	StatusSuspended   = "s"
	StatusUnavailable = "u"
)

// Element is a single player record from the bootstrap dataset
type Element struct {
	ID                       int    `json:"id"`
	FirstName                string `json:"first_name"`
	SecondName               string `json:"second_name"`
	WebName                  string `json:"web_name"`
	Team                     int    `json:"team"`
	ElementType              int    `json:"element_type"`
	NowCost                  int    `json:"now_cost"`
	Status                   string `json:"status"`
	SelectedByPercent        string `json:"selected_by_percent"`
	Form                     string `json:"form"`
	PointsPerGame            string `json:"points_per_game"`
	TotalPoints              int    `json:"total_points"`
	News                     string `json:"news"`
	ChanceOfPlayingNextRound *int   `json:"chance_of_playing_next_round"`
}

// FullName returns the player's first and second names joined
func (e Element) FullName() string {
	return e.FirstName + " " + e.SecondName
}

// Team is a single club record from the bootstrap dataset
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Event is a single gameweek record from the bootstrap dataset
type Event struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	IsNext    bool   `json:"is_next"`
	Finished  bool   `json:"finished"`
}

// Bootstrap is the subset of the bootstrap-static dataset this service consumes
type Bootstrap struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

// TeamByID returns the team with the given id, or nil if unknown
func (b *Bootstrap) TeamByID(id int) *Team {
	for i := range b.Teams {
		if b.Teams[i].ID == id {
			return &b.Teams[i]
		}
	}
	return nil
}

// Fixture is a single match record from the fixtures dataset
type Fixture struct {
	ID              int        `json:"id"`
	Event           *int       `json:"event"`
	TeamH           int        `json:"team_h"`
	TeamA           int        `json:"team_a"`
	TeamHDifficulty int        `json:"team_h_difficulty"`
	TeamADifficulty int        `json:"team_a_difficulty"`
	KickoffTime     *time.Time `json:"kickoff_time"`
	Finished        bool       `json:"finished"`
}

// ParseBootstrap decodes a cached bootstrap payload
func ParseBootstrap(raw json.RawMessage) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bootstrap payload: %w", err)
	}
	return &b, nil
}

// ParseFixtures decodes a cached fixtures payload
func ParseFixtures(raw json.RawMessage) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures payload: %w", err)
	}
	return fixtures, nil
}
