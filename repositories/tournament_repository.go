package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/ttleague/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound          = errors.New("tournament not found")
	ErrTournamentNameConflict      = errors.New("tournament with this name, category and start date already exists")
	ErrTournamentPlayerConflict    = errors.New("player already enrolled in tournament")
	ErrTournamentPlayerInvalid     = errors.New("invalid player reference")
	ErrTournamentPlayerNotEnrolled = errors.New("player not enrolled in tournament")
)

type ListTournamentsFilter struct {
	Status   *models.TournamentStatus
	Category *string
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error)
	AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	// UpdateBracketState sets status and winner. Leaving the finished state clears the archive key.
	UpdateBracketState(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, winner *models.TournamentWinner) error
	SetArchiveKey(ctx context.Context, exec SQLExecutor, id int, key string) error
	ListFinishedUnarchived(ctx context.Context, exec SQLExecutor, limit int) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, category, bracket_type, start_date, end_date, status,
	winner_player_id, winner_category, winner_decided_at, archive_key, created_at, updated_at`

// Listing queries carry the enrollment in the same row.
const tournamentListColumns = tournamentColumns + `,
	ARRAY(SELECT tp.player_id FROM tournament_players tp
		WHERE tp.tournament_id = tournaments.id ORDER BY tp.position ASC) AS player_ids`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, category, bracket_type, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Category, t.BracketType, t.StartDate, t.EndDate, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return r.handleTournamentError(err)
	}
	t.PlayerIDs = []int{}
	return nil
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner, extra ...interface{}) (*models.Tournament, error) {
	var (
		t               models.Tournament
		winnerPlayerID  sql.NullInt64
		winnerCategory  sql.NullString
		winnerDecidedAt sql.NullTime
	)
	dest := []interface{}{
		&t.ID, &t.Name, &t.Category, &t.BracketType, &t.StartDate, &t.EndDate, &t.Status,
		&winnerPlayerID, &winnerCategory, &winnerDecidedAt, &t.ArchiveKey, &t.CreatedAt, &t.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if winnerPlayerID.Valid {
		t.Winner = &models.TournamentWinner{
			PlayerID:  int(winnerPlayerID.Int64),
			Category:  winnerCategory.String,
			DecidedAt: winnerDecidedAt.Time,
		}
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, id, false)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, id, true)
}

func (r *postgresTournamentRepository) get(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t, err := r.scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}

	t.PlayerIDs, err = r.listPlayerIDs(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) listPlayerIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT player_id FROM tournament_players WHERE tournament_id = $1 ORDER BY position ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tournament player id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentListColumns + ` FROM tournaments`)

	args := []interface{}{}
	conditions := []string{}
	placeholderIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, "status = $"+strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = $"+strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Category)
		placeholderIndex++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
		placeholderIndex++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Offset)
	}

	return r.queryTournaments(ctx, exec, queryBuilder.String(), args...)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var playerIDs []int64
		t, scanErr := r.scanTournament(rows, pq.Array(&playerIDs))
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		t.PlayerIDs = make([]int, len(playerIDs))
		for i, id := range playerIDs {
			t.PlayerIDs[i] = int(id)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1
		FROM tournament_players
		WHERE tournament_id = $1`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, playerID)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player %d from tournament %d: %w", playerID, tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentPlayerNotEnrolled)
}

func (r *postgresTournamentRepository) UpdateBracketState(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, winner *models.TournamentWinner) error {
	var (
		winnerPlayerID  *int
		winnerCategory  *string
		winnerDecidedAt *time.Time
	)
	if winner != nil {
		winnerPlayerID = &winner.PlayerID
		winnerCategory = &winner.Category
		winnerDecidedAt = &winner.DecidedAt
	}

	query := `
		UPDATE tournaments
		SET status = $1,
		    winner_player_id = $2,
		    winner_category = $3,
		    winner_decided_at = $4,
		    archive_key = CASE WHEN $1 = 'finished' THEN archive_key ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, winnerPlayerID, winnerCategory, winnerDecidedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket state of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetArchiveKey(ctx context.Context, exec SQLExecutor, id int, key string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE tournaments SET archive_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to set archive key of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListFinishedUnarchived(ctx context.Context, exec SQLExecutor, limit int) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentListColumns + `
		FROM tournaments
		WHERE status = 'finished' AND archive_key IS NULL
		ORDER BY winner_decided_at ASC, id ASC
		LIMIT $1`
	return r.queryTournaments(ctx, exec, query, limit)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint, ok := pqConstraint(err)
	if !ok {
		return err
	}
	switch code {
	case pqUniqueViolation:
		switch constraint {
		case "tournaments_name_category_start_date_key":
			return ErrTournamentNameConflict
		case "tournament_players_pkey":
			return ErrTournamentPlayerConflict
		}
	case pqForeignKeyViolation:
		switch constraint {
		case "tournament_players_player_id_fkey":
			return ErrTournamentPlayerInvalid
		case "tournament_players_tournament_id_fkey":
			return ErrTournamentNotFound
		}
	}
	return err
}
