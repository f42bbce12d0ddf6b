package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/ttleague/models"
)

var (
	ErrNotEnoughPlayers     = errors.New("not enough players to generate a bracket (minimum 2)")
	ErrFormatNotImplemented = errors.New("bracket format is not implemented")
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	Players    []*models.Player
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// NewGenerator returns the generator registered for the given bracket type.
func NewGenerator(bracketType models.BracketType) (BracketGenerator, error) {
	switch bracketType {
	case models.BracketSingleElimination, "":
		return NewSingleEliminationGenerator(), nil
	case models.BracketDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.BracketRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported bracket type '%s'", bracketType)
	}
}
