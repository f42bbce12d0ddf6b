package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
)

type CreatePlayerInput struct {
	Name     string  `json:"name"`
	Document *string `json:"document,omitempty"`
	Age      *int    `json:"age,omitempty"`
	Category string  `json:"category"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	// GetByID returns the player together with the ranking history.
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	categories CategoryPolicy
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, categories CategoryPolicy, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{playerRepo: playerRepo, categories: categories, logger: logger}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := normalizeSpaces(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return nil, fmt.Errorf("%w: player name must be at most %d characters", ErrValidationFailed, maxPlayerNameLength)
	}
	if input.Age != nil && *input.Age < 0 {
		return nil, fmt.Errorf("%w: age must be non-negative", ErrValidationFailed)
	}
	category, err := s.categories.Normalize(input.Category)
	if err != nil {
		return nil, err
	}

	var document *string
	if input.Document != nil {
		if trimmed := strings.TrimSpace(*input.Document); trimmed != "" {
			document = &trimmed
		}
	}

	player := &models.Player{
		Name:     name,
		Document: document,
		Age:      input.Age,
		Category: category,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, translateRepoError(err)
	}
	player.RankingHistory = []models.RankingHistoryEntry{}

	s.logger.Info("player created", slog.Int("player_id", player.ID), slog.String("category", player.Category))
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	history, err := s.playerRepo.ListHistory(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	player.RankingHistory = history
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx, nil)
}
