package services

import (
	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/models"
)

// EventPublisher delivers live bracket events to subscribers of a room.
type EventPublisher interface {
	BroadcastToRoom(roomID string, message interface{})
}

type BracketGeneratedPayload struct {
	TournamentID int             `json:"tournament_id"`
	Matches      []*models.Match `json:"matches"`
}

type BracketResetPayload struct {
	TournamentID   int   `json:"tournament_id"`
	DeletedMatches int64 `json:"deleted_matches"`
}

type MatchUpdatedPayload struct {
	TournamentID int           `json:"tournament_id"`
	Match        *models.Match `json:"match"`
	NextMatch    *models.Match `json:"next_match,omitempty"`
}

type TournamentFinishedPayload struct {
	TournamentID int                      `json:"tournament_id"`
	Winner       *models.TournamentWinner `json:"winner"`
}

func publish(publisher EventPublisher, tournamentID int, eventType string, payload interface{}) {
	if publisher == nil {
		return
	}
	room := brackets.TournamentRoom(tournamentID)
	publisher.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}
