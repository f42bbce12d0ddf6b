package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
)

// progression records a decided match and moves its winner forward.
// Shared by bye auto-advance and reported results; always runs inside a transaction.
type progression struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	ranking        *rankingService
	now            func() time.Time
}

type progressOutcome struct {
	Match     *models.Match
	NextMatch *models.Match
	Winner    *models.TournamentWinner
}

func (p *progression) advance(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerID int, awardPoints bool) (*progressOutcome, error) {
	match.WinnerID = &winnerID
	match.Status = models.MatchStatusPlayed
	if err := p.matchRepo.UpdateResult(ctx, exec, match); err != nil {
		return nil, fmt.Errorf("failed to save result of match %d: %w", match.ID, translateRepoError(err))
	}

	if awardPoints {
		reason := fmt.Sprintf("Victory in %s (round %d)", match.Category, match.Round)
		if _, err := p.ranking.increment(ctx, exec, winnerID, match.Category, WinPoints, reason); err != nil {
			return nil, err
		}
	}

	outcome := &progressOutcome{Match: match}
	nextRound, nextSlot, sideA := brackets.NextSlot(match.Round, match.Slot)
	next, err := p.matchRepo.GetBySlot(ctx, exec, match.TournamentID, match.Category, nextRound, nextSlot)
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		winner := &models.TournamentWinner{PlayerID: winnerID, Category: match.Category, DecidedAt: p.now()}
		if err := p.tournamentRepo.UpdateBracketState(ctx, exec, match.TournamentID, models.StatusFinished, winner); err != nil {
			return nil, fmt.Errorf("failed to finish tournament %d: %w", match.TournamentID, translateRepoError(err))
		}
		outcome.Winner = winner
		return outcome, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load next match of match %d: %w", match.ID, err)
	}

	if sideA {
		next.PlayerAID = &winnerID
	} else {
		next.PlayerBID = &winnerID
	}
	if err := p.matchRepo.UpdatePlayers(ctx, exec, next.ID, next.PlayerAID, next.PlayerBID); err != nil {
		return nil, fmt.Errorf("failed to advance winner into match %d: %w", next.ID, translateRepoError(err))
	}
	outcome.NextMatch = next
	return outcome, nil
}
