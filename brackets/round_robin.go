package brackets

import (
	"context"
	"fmt"
)

// RoundRobinGenerator is registered so the bracket type can be stored on a
// tournament, but generation is not supported yet.
type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	return nil, fmt.Errorf("%s: %w", g.GetName(), ErrFormatNotImplemented)
}

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	return nil, fmt.Errorf("%s: %w", g.GetName(), ErrFormatNotImplemented)
}
