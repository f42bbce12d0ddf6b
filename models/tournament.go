package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusCreated    TournamentStatus = "created"
	StatusInProgress TournamentStatus = "in_progress"
	StatusFinished   TournamentStatus = "finished"
)

type BracketType string

const (
	BracketSingleElimination BracketType = "single_elimination"
	BracketDoubleElimination BracketType = "double_elimination"
	BracketRoundRobin        BracketType = "round_robin"
)

func (b BracketType) Valid() bool {
	switch b {
	case BracketSingleElimination, BracketDoubleElimination, BracketRoundRobin:
		return true
	}
	return false
}

// TournamentWinner is recorded when the final match is decided.
type TournamentWinner struct {
	PlayerID  int       `json:"player_id"`
	Category  string    `json:"category"`
	DecidedAt time.Time `json:"decided_at"`
}

// Tournament представляет турнир.
type Tournament struct {
	ID          int               `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Category    string            `json:"category" db:"category"`
	BracketType BracketType       `json:"bracket_type" db:"bracket_type"`
	StartDate   *time.Time        `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time        `json:"end_date,omitempty" db:"end_date"`
	Status      TournamentStatus  `json:"status" db:"status"`
	Winner      *TournamentWinner `json:"winner,omitempty" db:"-"`
	ArchiveKey  *string           `json:"-" db:"archive_key"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`

	// Enrollment order is preserved; IDs are unique.
	PlayerIDs []int `json:"player_ids" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Players    []Player `json:"players,omitempty" db:"-"`
	MatchCount *int     `json:"match_count,omitempty" db:"-"`
}

// IsEnrolled reports whether playerID is in the enrollment list.
func (t *Tournament) IsEnrolled(playerID int) bool {
	for _, id := range t.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
