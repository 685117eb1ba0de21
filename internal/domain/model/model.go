// Package model contains domain shapes passed between layers.
package model

import "time"

// Athlete is the minimal competitor reference supplied by the event data
// provider. The engine never mutates it.
type Athlete struct {
	ID        string `json:"athlete_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Wod is a single workout unit a session is built around.
type Wod struct {
	ID          string `json:"wod_id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
}

// Category groups athletes into a division, e.g. "RX Men".
type Category struct {
	ID   string `json:"category_id"`
	Name string `json:"name"`
}

// Day is one calendar day of a competition.
type Day struct {
	ID   string `json:"day_id"`
	Date string `json:"date"` // YYYY-MM-DD
}

// EventData is everything the engine needs to build a schedule for an event.
type EventData struct {
	EventID    string
	Days       []Day
	Athletes   []Athlete
	Categories []Category
	Wods       []Wod
}

// Score is one athlete's best score under a scoring filter.
// Athletes with no submission carry a zero score, never an absent row.
type Score struct {
	AthleteID   string    `json:"athlete_id"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// MatchResult is the outcome of one head-to-head match as reported by the
// score provider.
type MatchResult struct {
	MatchID     string  `json:"match_id"`
	WinnerID    string  `json:"winner_id"`
	LoserID     string  `json:"loser_id"`
	WinnerScore float64 `json:"winner_score"`
	LoserScore  float64 `json:"loser_score"`
}

// FullName renders the athlete's display name.
func (a Athlete) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
