package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	BracketType models.BracketType `json:"bracket_type,omitempty"`
	// Dates accept any layout understood by dateparse, e.g. "2025-03-14" or "14 Mar 2025".
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// GetByID loads the tournament with its enrolled players and match count.
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	EnrollPlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error)
	UnenrollPlayer(ctx context.Context, tournamentID, playerID int) error
}

type tournamentService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	categories     CategoryPolicy
	logger         *slog.Logger
}

func NewTournamentService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	categories CategoryPolicy,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		categories:     categories,
		logger:         logger,
	}
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", ErrValidationFailed, field, value)
	}
	return &t, nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := normalizeSpaces(input.Name)
	if n := utf8.RuneCountInString(name); n < minTournamentNameLength || n > maxTournamentNameLength {
		return nil, fmt.Errorf("%w: tournament name must be %d to %d characters", ErrValidationFailed, minTournamentNameLength, maxTournamentNameLength)
	}
	category, err := s.categories.Normalize(input.Category)
	if err != nil {
		return nil, err
	}

	bracketType := input.BracketType
	if bracketType == "" {
		bracketType = models.BracketSingleElimination
	}
	if !bracketType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBracketType, bracketType)
	}

	startDate, err := parseDate("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("end_date", input.EndDate)
	if err != nil {
		return nil, err
	}
	if err := validateTournamentDates(startDate, endDate); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:        name,
		Category:    category,
		BracketType: bracketType,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.StatusCreated,
	}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("tournament created", slog.Int("tournament_id", tournament.ID), slog.String("category", tournament.Category))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := s.playerRepo.ListByIDs(gCtx, nil, tournament.PlayerIDs)
		if err != nil {
			return fmt.Errorf("failed to load players of tournament %d: %w", id, err)
		}
		byID := make(map[int]*models.Player, len(players))
		for _, p := range players {
			byID[p.ID] = p
		}
		// Keep enrollment order.
		tournament.Players = make([]models.Player, 0, len(players))
		for _, playerID := range tournament.PlayerIDs {
			if p, ok := byID[playerID]; ok {
				tournament.Players = append(tournament.Players, *p)
			}
		}
		return nil
	})

	g.Go(func() error {
		count, err := s.matchRepo.CountByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament.MatchCount = &count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must be non-negative", ErrValidationFailed)
	}
	if filter.Category != nil {
		normalized := normalizeSpaces(*filter.Category)
		filter.Category = &normalized
	}
	return s.tournamentRepo.List(ctx, nil, filter)
}

// EnrollPlayer appends a player to the enrollment list. Enrollment closes once
// a bracket exists; the tournament row lock orders it against Build.
func (s *tournamentService) EnrollPlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		tournament, err = s.lockOpenTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if _, err := s.playerRepo.GetByID(ctx, exec, playerID); err != nil {
			return translateRepoError(err)
		}
		if tournament.IsEnrolled(playerID) {
			return ErrPlayerAlreadyEnrolled
		}
		if err := s.tournamentRepo.AddPlayer(ctx, exec, tournamentID, playerID); err != nil {
			return translateRepoError(err)
		}
		tournament.PlayerIDs = append(tournament.PlayerIDs, playerID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player enrolled", slog.Int("tournament_id", tournamentID), slog.Int("player_id", playerID))
	return tournament, nil
}

func (s *tournamentService) UnenrollPlayer(ctx context.Context, tournamentID, playerID int) error {
	err := s.transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lockOpenTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		return translateRepoError(s.tournamentRepo.RemovePlayer(ctx, exec, tournamentID, playerID))
	})
	if err != nil {
		return err
	}
	s.logger.Info("player unenrolled", slog.Int("tournament_id", tournamentID), slog.Int("player_id", playerID))
	return nil
}

func (s *tournamentService) lockOpenTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if tournament.Status != models.StatusCreated {
		return nil, ErrEnrollmentClosed
	}
	return tournament, nil
}
