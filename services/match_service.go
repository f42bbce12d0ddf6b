package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
)

// MatchResult describes the effects of a reported result.
type MatchResult struct {
	WinnerID         int                      `json:"winner_id"`
	Match            *models.Match            `json:"match"`
	NextMatch        *models.Match            `json:"next_match,omitempty"`
	TournamentWinner *models.TournamentWinner `json:"tournament_winner,omitempty"`
}

type MatchService interface {
	ReportResult(ctx context.Context, matchID, scoreA, scoreB int) (*MatchResult, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	transactor     repositories.Transactor
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	progression    *progression
	events         EventPublisher
	logger         *slog.Logger
}

func NewMatchService(
	transactor repositories.Transactor,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	ranking *rankingService,
	events EventPublisher,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		transactor:     transactor,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		progression: &progression{
			matchRepo:      matchRepo,
			tournamentRepo: tournamentRepo,
			ranking:        ranking,
			now:            time.Now,
		},
		events: events,
		logger: logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return match, nil
}

// ReportResult records the score of a pending match, awards the winner and
// advances them. Rows are locked tournament first, then match, the same order
// bracket build and reset use. Concurrent reports for one match are serialized
// and only the first succeeds.
func (s *matchService) ReportResult(ctx context.Context, matchID, scoreA, scoreB int) (*MatchResult, error) {
	if scoreA < 0 || scoreB < 0 {
		return nil, ErrInvalidScore
	}

	var outcome *progressOutcome
	err := s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, current.TournamentID); err != nil {
			return translateRepoError(err)
		}
		// Re-read under the lock: a reset may have removed the match meanwhile.
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		if match.Status == models.MatchStatusPlayed {
			return ErrMatchAlreadyPlayed
		}
		if !match.IsComplete() {
			return ErrIncompleteMatch
		}
		if scoreA == scoreB {
			return ErrDrawNotAllowed
		}

		winnerID := *match.PlayerAID
		if scoreB > scoreA {
			winnerID = *match.PlayerBID
		}
		match.ScoreA, match.ScoreB = scoreA, scoreB

		outcome, err = s.progression.advance(ctx, exec, match, winnerID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	match := outcome.Match
	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("round", match.Round),
		slog.Int("winner_id", *match.WinnerID))

	publish(s.events, match.TournamentID, brackets.EventMatchUpdated, MatchUpdatedPayload{
		TournamentID: match.TournamentID,
		Match:        match,
		NextMatch:    outcome.NextMatch,
	})
	if outcome.Winner != nil {
		s.logger.Info("tournament finished", slog.Int("tournament_id", match.TournamentID), slog.Int("winner_id", outcome.Winner.PlayerID))
		publish(s.events, match.TournamentID, brackets.EventTournamentFinished, TournamentFinishedPayload{
			TournamentID: match.TournamentID,
			Winner:       outcome.Winner,
		})
	}

	return &MatchResult{
		WinnerID:         *match.WinnerID,
		Match:            match,
		NextMatch:        outcome.NextMatch,
		TournamentWinner: outcome.Winner,
	}, nil
}
