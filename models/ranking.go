package models

import "time"

// RankingEntry holds the point total of a player within one category.
type RankingEntry struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Category  string    `json:"category" db:"category"`
	Points    int       `json:"points" db:"points"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Computed by the ranking listing, 1-based.
	Position int     `json:"position,omitempty" db:"-"`
	Player   *Player `json:"player,omitempty" db:"-"`
}
