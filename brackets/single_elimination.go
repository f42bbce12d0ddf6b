package brackets

import (
	"context"
	"math/bits"
	"sort"

	"github.com/Dosada05/ttleague/models"
)

// BracketMatch is a generated, not yet persisted, bracket node.
type BracketMatch struct {
	Round int
	Slot  int

	PlayerAID *int
	PlayerBID *int

	IsBye       bool
	ByePlayerID *int
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket seeds the players, pads the field with byes up to the next
// power of two and pairs seed i with seed size-1-i. Rounds after the first are
// returned with empty slots; byes are flagged but not advanced here.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	n := len(params.Players)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seeded := SeedPlayers(params.Players)
	size := BracketSize(n)

	// nil entries are byes; they always land at the tail.
	field := make([]*int, size)
	for i, p := range seeded {
		id := p.ID
		field[i] = &id
	}

	rounds := RoundCount(size)
	matches := make([]*BracketMatch, 0, size-1)

	for i := 0; i < size/2; i++ {
		bm := &BracketMatch{
			Round:     1,
			Slot:      i + 1,
			PlayerAID: field[i],
			PlayerBID: field[size-1-i],
		}
		switch {
		case bm.PlayerAID != nil && bm.PlayerBID == nil:
			bm.IsBye = true
			bm.ByePlayerID = bm.PlayerAID
		case bm.PlayerAID == nil && bm.PlayerBID != nil:
			bm.IsBye = true
			bm.ByePlayerID = bm.PlayerBID
		}
		matches = append(matches, bm)
	}

	for r := 2; r <= rounds; r++ {
		slots := size >> r
		for s := 1; s <= slots; s++ {
			matches = append(matches, &BracketMatch{Round: r, Slot: s})
		}
	}

	return matches, nil
}

// SeedPlayers orders players by current ranking descending, ties broken by
// name ascending. The input slice is not modified.
func SeedPlayers(players []*models.Player) []*models.Player {
	seeded := make([]*models.Player, len(players))
	copy(seeded, players)
	sort.SliceStable(seeded, func(i, j int) bool {
		if seeded[i].CurrentRanking != seeded[j].CurrentRanking {
			return seeded[i].CurrentRanking > seeded[j].CurrentRanking
		}
		return seeded[i].Name < seeded[j].Name
	})
	return seeded
}

// BracketSize returns the smallest power of two >= n (1 for n <= 1).
func BracketSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// RoundCount returns log2(size) for a power-of-two bracket size.
func RoundCount(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

// NextSlot addresses the match a winner advances into and which side it takes.
func NextSlot(round, slot int) (nextRound, nextSlot int, sideA bool) {
	return round + 1, (slot + 1) / 2, slot%2 == 1
}
