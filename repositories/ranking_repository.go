package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/ttleague/models"
)

var (
	ErrRankingEntryNotFound = errors.New("ranking entry not found")
	ErrRankingPlayerInvalid = errors.New("ranking player reference invalid")
)

type RankingRepository interface {
	// Increment adds delta to the (player, category) entry, creating it if needed.
	// The stored total never drops below zero.
	Increment(ctx context.Context, exec SQLExecutor, playerID int, category string, delta int) (*models.RankingEntry, error)
	Set(ctx context.Context, exec SQLExecutor, playerID int, category string, points int) (*models.RankingEntry, error)
	// Get returns the entry with its position in the category.
	Get(ctx context.Context, exec SQLExecutor, playerID int, category string) (*models.RankingEntry, error)
	// ListByCategory returns entries ordered by points desc, id asc. An empty category lists all.
	// Position is the competition rank within the entry's own category: tied points share a
	// position and the next one skips (1, 1, 3).
	ListByCategory(ctx context.Context, exec SQLExecutor, category string, limit, offset int) ([]*models.RankingEntry, error)
	DeleteByCategory(ctx context.Context, exec SQLExecutor, category string) (int64, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const rankingColumns = `id, player_id, category, points, created_at, updated_at`

const rankingPositionColumn = `RANK() OVER (PARTITION BY category ORDER BY points DESC) AS position`

func (r *postgresRankingRepository) scanEntry(row rowScanner, extra ...interface{}) (*models.RankingEntry, error) {
	e := &models.RankingEntry{}
	dest := []interface{}{&e.ID, &e.PlayerID, &e.Category, &e.Points, &e.CreatedAt, &e.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresRankingRepository) Increment(ctx context.Context, exec SQLExecutor, playerID int, category string, delta int) (*models.RankingEntry, error) {
	query := `
		INSERT INTO rankings (player_id, category, points)
		VALUES ($1, $2, GREATEST(0, $3::int))
		ON CONFLICT (player_id, category) DO UPDATE
		SET points = GREATEST(0, rankings.points + $3::int), updated_at = NOW()
		RETURNING ` + rankingColumns

	e, err := r.scanEntry(r.getExecutor(exec).QueryRowContext(ctx, query, playerID, category, delta))
	if err != nil {
		return nil, r.handleRankingError(err, "increment", playerID, category)
	}
	return e, nil
}

func (r *postgresRankingRepository) Set(ctx context.Context, exec SQLExecutor, playerID int, category string, points int) (*models.RankingEntry, error) {
	query := `
		INSERT INTO rankings (player_id, category, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, category) DO UPDATE
		SET points = EXCLUDED.points, updated_at = NOW()
		RETURNING ` + rankingColumns

	e, err := r.scanEntry(r.getExecutor(exec).QueryRowContext(ctx, query, playerID, category, points))
	if err != nil {
		return nil, r.handleRankingError(err, "set", playerID, category)
	}
	return e, nil
}

func (r *postgresRankingRepository) Get(ctx context.Context, exec SQLExecutor, playerID int, category string) (*models.RankingEntry, error) {
	query := `
		SELECT ` + rankingColumns + `,
			(SELECT COUNT(*) + 1 FROM rankings o WHERE o.category = r.category AND o.points > r.points)
		FROM rankings r
		WHERE player_id = $1 AND category = $2`
	var position int
	e, err := r.scanEntry(r.getExecutor(exec).QueryRowContext(ctx, query, playerID, category), &position)
	if err != nil {
		if errors.Is(err, ErrRankingEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get ranking of player %d in %q: %w", playerID, category, err)
	}
	e.Position = position
	return e, nil
}

func (r *postgresRankingRepository) ListByCategory(ctx context.Context, exec SQLExecutor, category string, limit, offset int) ([]*models.RankingEntry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + rankingColumns + `, ` + rankingPositionColumn + ` FROM rankings`)

	args := []interface{}{}
	placeholderIndex := 1
	if category != "" {
		queryBuilder.WriteString(" WHERE category = $" + strconv.Itoa(placeholderIndex))
		args = append(args, category)
		placeholderIndex++
	}
	queryBuilder.WriteString(" ORDER BY points DESC, id ASC")
	if limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(placeholderIndex))
		args = append(args, limit)
		placeholderIndex++
	}
	if offset > 0 {
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(placeholderIndex))
		args = append(args, offset)
	}

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings for %q: %w", category, err)
	}
	defer rows.Close()

	entries := make([]*models.RankingEntry, 0)
	for rows.Next() {
		var position int
		e, scanErr := r.scanEntry(rows, &position)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", scanErr)
		}
		e.Position = position
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresRankingRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, category string) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM rankings WHERE category = $1`, category)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rankings of %q: %w", category, err)
	}
	return result.RowsAffected()
}

func (r *postgresRankingRepository) handleRankingError(err error, op string, playerID int, category string) error {
	if code, constraint, ok := pqConstraint(err); ok && code == pqForeignKeyViolation && constraint == "rankings_player_id_fkey" {
		return ErrRankingPlayerInvalid
	}
	return fmt.Errorf("failed to %s ranking of player %d in %q: %w", op, playerID, category, err)
}
