package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/ttleague/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerDocumentConflict = errors.New("player document conflict")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error)
	ApplyRankingDelta(ctx context.Context, exec SQLExecutor, playerID int, entry models.RankingHistoryEntry) error
	ListHistory(ctx context.Context, exec SQLExecutor, playerID int) ([]models.RankingHistoryEntry, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, name, document, age, category, current_ranking, created_at, updated_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players (name, document, age, category, current_ranking)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.Name, p.Document, p.Age, p.Category, p.CurrentRanking,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqUniqueViolation && constraint == "players_document_key" {
			return ErrPlayerDocumentConflict
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.Document, &p.Age, &p.Category, &p.CurrentRanking, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name ASC, id ASC`
	return r.queryPlayers(ctx, exec, query)
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id ASC`
	return r.queryPlayers(ctx, exec, query, pq.Array(ids64))
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := r.scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

// ApplyRankingDelta bumps the cached ranking and appends the history row.
// Both statements must run on the same executor to stay consistent.
func (r *postgresPlayerRepository) ApplyRankingDelta(ctx context.Context, exec SQLExecutor, playerID int, entry models.RankingHistoryEntry) error {
	executor := r.getExecutor(exec)
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	result, err := executor.ExecContext(ctx,
		`UPDATE players SET current_ranking = current_ranking + $1, updated_at = NOW() WHERE id = $2`,
		entry.Delta, playerID)
	if err != nil {
		return fmt.Errorf("failed to update ranking of player %d: %w", playerID, err)
	}
	if err := checkAffectedRows(result, ErrPlayerNotFound); err != nil {
		return err
	}

	_, err = executor.ExecContext(ctx,
		`INSERT INTO player_ranking_history (player_id, recorded_at, delta, reason) VALUES ($1, $2, $3, $4)`,
		playerID, entry.RecordedAt, entry.Delta, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to append ranking history of player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) ListHistory(ctx context.Context, exec SQLExecutor, playerID int) ([]models.RankingHistoryEntry, error) {
	query := `
		SELECT id, player_id, recorded_at, delta, reason
		FROM player_ranking_history
		WHERE player_id = $1
		ORDER BY recorded_at ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history of player %d: %w", playerID, err)
	}
	defer rows.Close()

	history := make([]models.RankingHistoryEntry, 0)
	for rows.Next() {
		var h models.RankingHistoryEntry
		if err := rows.Scan(&h.ID, &h.PlayerID, &h.RecordedAt, &h.Delta, &h.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan ranking history row: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
