package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/ttleague/models"
	"github.com/Dosada05/ttleague/repositories"
	"github.com/Dosada05/ttleague/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const archiveContentType = "application/gzip"

// ArchiveSnapshot is the stored form of a finished bracket.
type ArchiveSnapshot struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []*models.Match    `json:"matches"`
	ArchivedAt time.Time          `json:"archived_at"`
}

type ArchiveService interface {
	ArchiveTournament(ctx context.Context, tournamentID int) (*storage.UploadResult, error)
	// ArchivePending archives up to one batch of finished, not yet archived tournaments.
	ArchivePending(ctx context.Context) (int, error)
	Download(ctx context.Context, tournamentID int) (*ArchiveSnapshot, error)
}

type archiveService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	batchSize      int
	logger         *slog.Logger
	now            func() time.Time
}

// NewArchiveService accepts a nil uploader; every operation then fails with ErrArchiveDisabled.
func NewArchiveService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	batchSize int,
	logger *slog.Logger,
) ArchiveService {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &archiveService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		batchSize:      batchSize,
		logger:         logger,
		now:            time.Now,
	}
}

func archiveKey(t *models.Tournament) string {
	name := slug.Make(t.Name)
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("brackets/%s-%d/%s.json.gz", name, t.ID, uuid.NewString())
}

// ArchiveTournament uploads the bracket of a finished tournament once. Later calls
// return the recorded object instead of uploading a new copy.
func (s *archiveService) ArchiveTournament(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrArchiveDisabled
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if tournament.ArchiveKey != nil {
		key := *tournament.ArchiveKey
		return &storage.UploadResult{Key: key, Location: s.uploader.GetPublicURL(key)}, nil
	}
	return s.archive(ctx, tournament)
}

func (s *archiveService) archive(ctx context.Context, tournament *models.Tournament) (*storage.UploadResult, error) {
	if tournament.Status != models.StatusFinished {
		return nil, fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotFinished, tournament.ID, tournament.Status)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournament.ID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	snapshot := ArchiveSnapshot{Tournament: tournament, Matches: matches, ArchivedAt: s.now().UTC()}
	if err := json.NewEncoder(zw).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode bracket snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress bracket snapshot: %w", err)
	}

	key := archiveKey(tournament)
	result, err := s.uploader.Upload(ctx, key, archiveContentType, &buf)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.SetArchiveKey(ctx, nil, tournament.ID, key); err != nil {
		// The key was never recorded, so nothing references the object.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned archive", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, translateRepoError(err)
	}

	s.logger.Info("bracket archived", slog.Int("tournament_id", tournament.ID), slog.String("key", key), slog.Int("matches", len(matches)))
	return result, nil
}

func (s *archiveService) ArchivePending(ctx context.Context) (int, error) {
	if s.uploader == nil {
		return 0, ErrArchiveDisabled
	}
	pending, err := s.tournamentRepo.ListFinishedUnarchived(ctx, nil, s.batchSize)
	if err != nil {
		return 0, err
	}

	archived := 0
	var errs []error
	for _, t := range pending {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.archive(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("tournament %d: %w", t.ID, err))
			continue
		}
		archived++
	}
	return archived, errors.Join(errs...)
}

func (s *archiveService) Download(ctx context.Context, tournamentID int) (*ArchiveSnapshot, error) {
	if s.uploader == nil {
		return nil, ErrArchiveDisabled
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if tournament.ArchiveKey == nil {
		return nil, ErrArchiveNotFound
	}

	body, err := s.uploader.Download(ctx, *tournament.ArchiveKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrArchiveNotFound
		}
		return nil, err
	}
	defer body.Close()

	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive of tournament %d: %w", tournamentID, err)
	}
	defer zr.Close()

	var snapshot ArchiveSnapshot
	if err := json.NewDecoder(zr).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode archive of tournament %d: %w", tournamentID, err)
	}
	return &snapshot, nil
}
