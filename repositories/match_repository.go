package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/ttleague/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchSlotConflict      = errors.New("match with this tournament, category, round and slot already exists")
	ErrMatchPlayerInvalid     = errors.New("match player reference invalid")
	ErrMatchTournamentInvalid = errors.New("match tournament reference invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetBySlot(ctx context.Context, exec SQLExecutor, tournamentID int, category string, round, slot int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdatePlayers(ctx context.Context, exec SQLExecutor, matchID int, playerAID, playerBID *int) error
	DeleteByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID int, category string) (int64, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, category, round, slot, player_a_id, player_b_id,
	score_a, score_b, winner_id, status, bye, created_at, updated_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, category, round, slot, player_a_id, player_b_id,
			 score_a, score_b, winner_id, status, bye)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.TournamentID,
		match.Category,
		match.Round,
		match.Slot,
		match.PlayerAID,
		match.PlayerBID,
		match.ScoreA,
		match.ScoreB,
		match.WinnerID,
		match.Status,
		match.Bye,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.Category,
		&match.Round,
		&match.Slot,
		&match.PlayerAID,
		&match.PlayerBID,
		&match.ScoreA,
		&match.ScoreB,
		&match.WinnerID,
		&match.Status,
		&match.Bye,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.getOne(ctx, exec, query, id)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, exec, query, id)
}

func (r *postgresMatchRepository) GetBySlot(ctx context.Context, exec SQLExecutor, tournamentID int, category string, round, slot int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND category = $2 AND round = $3 AND slot = $4
		FOR UPDATE`
	return r.getOne(ctx, exec, query, tournamentID, category, round, slot)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Match, error) {
	match, err := r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, slot ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row for tournament %d: %w", tournamentID, scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, winner_id = $3, status = $4, bye = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.ScoreA, match.ScoreB, match.WinnerID, match.Status, match.Bye, match.ID,
	).Scan(&match.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) UpdatePlayers(ctx context.Context, exec SQLExecutor, matchID int, playerAID, playerBID *int) error {
	query := `UPDATE matches SET player_a_id = $1, player_b_id = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, playerAID, playerBID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournamentCategory(ctx context.Context, exec SQLExecutor, tournamentID int, category string) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1 AND category = $2`, tournamentID, category)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of tournament %d category %q: %w", tournamentID, category, err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches of tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint, ok := pqConstraint(err)
	if !ok {
		return err
	}
	switch code {
	case pqUniqueViolation:
		if constraint == "matches_tournament_id_category_round_slot_key" {
			return ErrMatchSlotConflict
		}
	case pqForeignKeyViolation:
		switch constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player_a_id_fkey", "matches_player_b_id_fkey", "matches_winner_id_fkey":
			return ErrMatchPlayerInvalid
		}
	case pqCheckViolation:
		return fmt.Errorf("match violates constraint %s: %w", constraint, err)
	}
	return err
}
