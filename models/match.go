package models

import "time"

type MatchStatus string

const (
	MatchStatusPending MatchStatus = "pending"
	MatchStatusPlayed  MatchStatus = "played"
)

// Match is one node of a bracket, addressed by (tournament, category, round, slot).
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Category     string      `json:"category" db:"category"`
	Round        int         `json:"round" db:"round"`
	Slot         int         `json:"slot" db:"slot"`
	PlayerAID    *int        `json:"player_a_id" db:"player_a_id"`
	PlayerBID    *int        `json:"player_b_id" db:"player_b_id"`
	ScoreA       int         `json:"score_a" db:"score_a"`
	ScoreB       int         `json:"score_b" db:"score_b"`
	WinnerID     *int        `json:"winner_id" db:"winner_id"`
	Status       MatchStatus `json:"status" db:"status"`
	Bye          bool        `json:"bye" db:"bye"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// IsComplete reports whether both player slots are filled.
func (m *Match) IsComplete() bool {
	return m.PlayerAID != nil && m.PlayerBID != nil
}
