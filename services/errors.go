package services

import (
	"errors"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrPlayerNotFound        = errors.New("player not found")
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrParticipationNotFound = errors.New("player is not registered for this tournament")
	ErrUserNotFound          = errors.New("user not found")

	ErrAlreadyRegistered = errors.New("player is already registered for this tournament")
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrTournamentInUse   = errors.New("tournament still has registered players")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrDatabaseUnavailable = errors.New("database is unavailable")
	ErrStorageUnavailable  = errors.New("file storage is unavailable")
)

// ValidationError collects per-field messages. It matches ErrValidationFailed
// with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Check(ok bool, field, message string) {
	if !ok {
		e.Add(field, message)
	}
}

func (e *ValidationError) Valid() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e.Valid() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
