package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/ttleague/repositories"
)

const (
	minTournamentNameLength = 3
	maxTournamentNameLength = 120
	maxPlayerNameLength     = 120
)

// normalizeSpaces trims s and collapses inner whitespace runs into one space.
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validateTournamentDates(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return fmt.Errorf("%w: start %s, end %s", ErrTournamentInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// CategoryPolicy controls which category strings are accepted.
// A zero value accepts any non-empty category.
type CategoryPolicy struct {
	Strict  bool
	Allowed []string
}

// Normalize returns the canonical form of category or a validation error.
func (p CategoryPolicy) Normalize(category string) (string, error) {
	normalized := normalizeSpaces(category)
	if normalized == "" {
		return "", ErrCategoryRequired
	}
	if !p.Strict {
		return normalized, nil
	}
	for _, allowed := range p.Allowed {
		if strings.EqualFold(normalizeSpaces(allowed), normalized) {
			return normalizeSpaces(allowed), nil
		}
	}
	return "", fmt.Errorf("%w: %q (allowed: %s)", ErrCategoryNotAllowed, normalized, strings.Join(p.Allowed, ", "))
}

// translateRepoError maps repository sentinels onto service errors.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound),
		errors.Is(err, repositories.ErrTournamentPlayerInvalid),
		errors.Is(err, repositories.ErrRankingPlayerInvalid):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrRankingEntryNotFound):
		return ErrRankingNotFound
	case errors.Is(err, repositories.ErrPlayerDocumentConflict):
		return ErrPlayerDocumentConflict
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentPlayerConflict):
		return ErrPlayerAlreadyEnrolled
	case errors.Is(err, repositories.ErrTournamentPlayerNotEnrolled):
		return ErrPlayerNotEnrolled
	}
	return err
}
