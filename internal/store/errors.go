package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Conflict reasons. They are specific enough for a caller to explain the
// rejection without looking at state again.
const (
	ReasonBookNotAvailable = "book not available"
	ReasonAlreadyReturned  = "borrow already returned"
	ReasonISBNTaken        = "isbn already exists"
	ReasonEmailTaken       = "email already registered"
	ReasonBookOnLoan       = "book has an open borrow"
	ReasonMemberHasBorrows = "member has open borrows"
)

// Entity names used in NotFoundError.
const (
	EntityBook   = "book"
	EntityMember = "member"
	EntityBorrow = "borrow"
)

// NotFoundError reports an id that does not resolve.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError is an expected business-rule rejection.
type ConflictError struct {
	Reason string
	ID     int64
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// IsReason reports whether err is a ConflictError with the given reason.
func IsReason(err error, reason string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Reason == reason
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
// on the given index or column list.
func isUniqueViolation(err error, target string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, target)
}
