package services

import "errors"

// ErrorKind classifies service errors for callers such as the HTTP layer.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindPrecondition ErrorKind = "precondition"
	KindInternal     ErrorKind = "internal"
)

type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindInternal
}

var (
	// Не найдено
	ErrPlayerNotFound     = newError(KindNotFound, "player not found")
	ErrTournamentNotFound = newError(KindNotFound, "tournament not found")
	ErrMatchNotFound      = newError(KindNotFound, "match not found")
	ErrRankingNotFound    = newError(KindNotFound, "player has no ranking entry in this category")
	ErrPlayerNotEnrolled  = newError(KindNotFound, "player is not enrolled in this tournament")
	ErrArchiveNotFound    = newError(KindNotFound, "tournament bracket has not been archived")

	// Ошибки валидации
	ErrValidationFailed           = newError(KindValidation, "validation failed")
	ErrInvalidScore               = newError(KindValidation, "scores must be non-negative")
	ErrDrawNotAllowed             = newError(KindValidation, "draws are not allowed")
	ErrInvalidPoints              = newError(KindValidation, "points must be non-negative")
	ErrCategoryRequired           = newError(KindValidation, "category is required")
	ErrCategoryNotAllowed         = newError(KindValidation, "category is not allowed")
	ErrInvalidBracketType         = newError(KindValidation, "unknown bracket type")
	ErrTournamentInvalidDateRange = newError(KindValidation, "tournament end date must not be before start date")

	// Конфликты
	ErrPlayerDocumentConflict = newError(KindConflict, "a player with this document already exists")
	ErrTournamentNameConflict = newError(KindConflict, "a tournament with this name, category and start date already exists")
	ErrPlayerAlreadyEnrolled  = newError(KindConflict, "player is already enrolled in this tournament")
	ErrMatchAlreadyPlayed     = newError(KindConflict, "match result has already been reported")

	// Нарушение предусловий
	ErrInsufficientPlayers   = newError(KindPrecondition, "at least two enrolled players are required")
	ErrIncompleteMatch       = newError(KindPrecondition, "match does not have two players yet")
	ErrFormatNotImplemented  = newError(KindPrecondition, "bracket format not implemented")
	ErrEnrollmentClosed      = newError(KindPrecondition, "enrollment is closed once the bracket has been generated")
	ErrArchiveDisabled       = newError(KindPrecondition, "bracket archive storage is not configured")
	ErrTournamentNotFinished = newError(KindPrecondition, "tournament is not finished")
)
