package services

import (
	"errors"
	"fmt"

	"pickem-app/database"
)

// Sentinels for errors.Is checks across the service boundary
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrExternalData = errors.New("external data rejected")
	ErrPersistence  = errors.New("persistence failure")
)

// Validation rules
const (
	RulePickWindowClosed    = "pick_window_closed"
	RuleInvalidTeam         = "invalid_team"
	RuleInvalidKind         = "invalid_kind"
	RuleInvalidPoints       = "invalid_points"
	RuleDuplicateLock       = "duplicate_lock"
	RuleWeeklyQuotaExceeded = "weekly_quota_exceeded"
	RuleNotUnderdog         = "not_underdog"
	RuleInvalidInput        = "invalid_input"
)

// NotFoundError reports a missing game, user or spread
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is a rejected pick or request, with a human-readable reason
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ExternalDataError is a feed row that could not be matched or parsed
type ExternalDataError struct {
	Feed       string
	ExternalID string
	Reason     string
}

func (e *ExternalDataError) Error() string {
	return fmt.Sprintf("%s feed row %s: %s", e.Feed, e.ExternalID, e.Reason)
}

func (e *ExternalDataError) Is(target error) bool { return target == ErrExternalData }

// PersistenceError wraps a store failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func newValidationError(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// storeError turns a repository error into NotFoundError when the key is
// missing and PersistenceError otherwise
func storeError(op, resource, key string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return &PersistenceError{Op: op, Err: err}
}
