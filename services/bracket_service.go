package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
)

type BracketService interface {
	// Build replaces any existing bracket of the tournament with a freshly seeded one.
	Build(ctx context.Context, tournamentID int) ([]*models.Match, error)
	Reset(ctx context.Context, tournamentID int) error
	Get(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	progression    *progression
	events         EventPublisher
	logger         *slog.Logger
}

func NewBracketService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	ranking *rankingService,
	events EventPublisher,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
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

func (s *bracketService) Build(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	var (
		bracket     []*models.Match
		playerCount int
		byes        int
	)

	err := s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}

		generator, err := brackets.NewGenerator(tournament.BracketType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBracketType, err)
		}

		players, err := s.playerRepo.ListByIDs(ctx, exec, tournament.PlayerIDs)
		if err != nil {
			return fmt.Errorf("failed to load players of tournament %d: %w", tournamentID, err)
		}
		playerCount = len(players)

		generated, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Tournament: tournament,
			Players:    players,
		})
		switch {
		case errors.Is(err, brackets.ErrFormatNotImplemented):
			return fmt.Errorf("%w: %s", ErrFormatNotImplemented, tournament.BracketType)
		case errors.Is(err, brackets.ErrNotEnoughPlayers):
			return fmt.Errorf("%w: tournament %d has %d", ErrInsufficientPlayers, tournamentID, len(players))
		case err != nil:
			return fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
		}

		if _, err := s.matchRepo.DeleteByTournamentCategory(ctx, exec, tournamentID, tournament.Category); err != nil {
			return err
		}

		byeMatches := make([]*models.Match, 0)
		byePlayers := make(map[*models.Match]int)
		for _, bm := range generated {
			match := &models.Match{
				TournamentID: tournamentID,
				Category:     tournament.Category,
				Round:        bm.Round,
				Slot:         bm.Slot,
				PlayerAID:    bm.PlayerAID,
				PlayerBID:    bm.PlayerBID,
				Status:       models.MatchStatusPending,
				Bye:          bm.IsBye,
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return fmt.Errorf("failed to create match r%d s%d: %w", bm.Round, bm.Slot, err)
			}
			if bm.IsBye {
				byeMatches = append(byeMatches, match)
				byePlayers[match] = *bm.ByePlayerID
			}
		}

		if err := s.tournamentRepo.UpdateBracketState(ctx, exec, tournamentID, models.StatusInProgress, nil); err != nil {
			return translateRepoError(err)
		}

		// Byes advance without points. They are all in round 1, so none of them can finish the tournament.
		for _, match := range byeMatches {
			if _, err := s.progression.advance(ctx, exec, match, byePlayers[match], false); err != nil {
				return fmt.Errorf("failed to auto-advance bye in slot %d: %w", match.Slot, err)
			}
		}
		byes = len(byeMatches)

		bracket, err = s.matchRepo.ListByTournament(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("players", playerCount),
		slog.Int("byes", byes),
		slog.Int("matches", len(bracket)))
	publish(s.events, tournamentID, brackets.EventBracketGenerated, BracketGeneratedPayload{TournamentID: tournamentID, Matches: bracket})
	return bracket, nil
}

func (s *bracketService) Reset(ctx context.Context, tournamentID int) error {
	var deleted int64
	err := s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID); err != nil {
			return translateRepoError(err)
		}
		var err error
		deleted, err = s.matchRepo.DeleteByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		return translateRepoError(s.tournamentRepo.UpdateBracketState(ctx, exec, tournamentID, models.StatusCreated, nil))
	})
	if err != nil {
		return err
	}

	s.logger.Info("bracket reset", slog.Int("tournament_id", tournamentID), slog.Int64("deleted_matches", deleted))
	publish(s.events, tournamentID, brackets.EventBracketReset, BracketResetPayload{TournamentID: tournamentID, DeletedMatches: deleted})
	return nil
}

func (s *bracketService) Get(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	return s.matchRepo.ListByTournament(ctx, nil, tournamentID)
}
