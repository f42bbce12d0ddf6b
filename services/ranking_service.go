package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
)

// WinPoints is awarded to the winner of every non-bye match.
const WinPoints = 100

const DefaultAroundRadius = 3

type RankingService interface {
	SetPoints(ctx context.Context, playerID int, category string, points int) (*models.RankingEntry, error)
	ResetCategory(ctx context.Context, category string) (int64, error)
	Table(ctx context.Context, category string, limit, offset int) ([]*models.RankingEntry, error)
	PlayerRank(ctx context.Context, playerID int, category string) (*models.RankingEntry, error)
	Around(ctx context.Context, playerID int, category string, radius int) ([]*models.RankingEntry, error)
}

type rankingService struct {
	rankingRepo repositories.RankingRepository
	playerRepo  repositories.PlayerRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewRankingService(rankingRepo repositories.RankingRepository, playerRepo repositories.PlayerRepository, logger *slog.Logger) *rankingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &rankingService{
		rankingRepo: rankingRepo,
		playerRepo:  playerRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// increment is the only path that adds points. It must run inside the caller's
// transaction so the ranking entry, cached player ranking and history stay in step.
func (s *rankingService) increment(ctx context.Context, exec repositories.SQLExecutor, playerID int, category string, delta int, reason string) (*models.RankingEntry, error) {
	entry, err := s.rankingRepo.Increment(ctx, exec, playerID, category, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to increment ranking of player %d: %w", playerID, translateRepoError(err))
	}

	history := models.RankingHistoryEntry{RecordedAt: s.now(), Delta: delta, Reason: reason}
	if err := s.playerRepo.ApplyRankingDelta(ctx, exec, playerID, history); err != nil {
		return nil, fmt.Errorf("failed to record ranking history of player %d: %w", playerID, translateRepoError(err))
	}
	return entry, nil
}

func (s *rankingService) SetPoints(ctx context.Context, playerID int, category string, points int) (*models.RankingEntry, error) {
	if points < 0 {
		return nil, ErrInvalidPoints
	}
	category = normalizeSpaces(category)
	if category == "" {
		return nil, ErrCategoryRequired
	}

	entry, err := s.rankingRepo.Set(ctx, nil, playerID, category, points)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.Info("ranking points set", slog.Int("player_id", playerID), slog.String("category", category), slog.Int("points", points))
	return entry, nil
}

func (s *rankingService) ResetCategory(ctx context.Context, category string) (int64, error) {
	category = normalizeSpaces(category)
	if category == "" {
		return 0, ErrCategoryRequired
	}
	deleted, err := s.rankingRepo.DeleteByCategory(ctx, nil, category)
	if err != nil {
		return 0, err
	}
	s.logger.Info("ranking category reset", slog.String("category", category), slog.Int64("deleted", deleted))
	return deleted, nil
}

// Table lists entries by points. Positions come from the store and are the competition
// rank within each entry's category, so they survive paging and mixed-category listings.
func (s *rankingService) Table(ctx context.Context, category string, limit, offset int) ([]*models.RankingEntry, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must be non-negative", ErrValidationFailed)
	}
	entries, err := s.rankingRepo.ListByCategory(ctx, nil, normalizeSpaces(category), limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.attachPlayers(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *rankingService) PlayerRank(ctx context.Context, playerID int, category string) (*models.RankingEntry, error) {
	category = normalizeSpaces(category)
	if category == "" {
		return nil, ErrCategoryRequired
	}
	entry, err := s.rankingRepo.Get(ctx, nil, playerID, category)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.attachPlayers(ctx, []*models.RankingEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// Around returns every entry whose position falls in [max(1, p-radius), p+radius],
// where p is the player's position. Tied entries on the edges are all included.
func (s *rankingService) Around(ctx context.Context, playerID int, category string, radius int) ([]*models.RankingEntry, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must be non-negative", ErrValidationFailed)
	}
	target, err := s.PlayerRank(ctx, playerID, category)
	if err != nil {
		return nil, err
	}
	entries, err := s.rankingRepo.ListByCategory(ctx, nil, target.Category, 0, 0)
	if err != nil {
		return nil, err
	}
	lo := max(1, target.Position-radius)
	hi := target.Position + radius
	window := make([]*models.RankingEntry, 0, 2*radius+1)
	for _, e := range entries {
		if e.Position >= lo && e.Position <= hi {
			window = append(window, e)
		}
	}
	if err := s.attachPlayers(ctx, window); err != nil {
		return nil, err
	}
	return window, nil
}

func (s *rankingService) attachPlayers(ctx context.Context, entries []*models.RankingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	players, err := s.playerRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to load ranked players: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, e := range entries {
		e.Player = byID[e.PlayerID]
	}
	return nil
}
