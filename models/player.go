package models

import "time"

// Player представляет игрока лиги.
type Player struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Document       *string   `json:"document,omitempty" db:"document"`
	Age            *int      `json:"age,omitempty" db:"age"`
	Category       string    `json:"category" db:"category"`
	CurrentRanking int       `json:"current_ranking" db:"current_ranking"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	RankingHistory []RankingHistoryEntry `json:"ranking_history,omitempty" db:"-"`
}

// RankingHistoryEntry is one append-only change of a player's cached ranking.
type RankingHistoryEntry struct {
	ID         int       `json:"-" db:"id"`
	PlayerID   int       `json:"-" db:"player_id"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
	Delta      int       `json:"delta" db:"delta"`
	Reason     string    `json:"reason" db:"reason"`
}
