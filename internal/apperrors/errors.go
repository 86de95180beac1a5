package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrStoreUnavailable wraps any failure reported by the backing record or blob store.
// It is transient from the caller's point of view; nothing below the caller retries it.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrDuplicateMember is returned when a member with the same ID already exists.
var ErrDuplicateMember = fmt.Errorf("member already exists: %w", ErrDuplicate)

// ErrUnknownMember is returned when a transaction references a member that does not exist.
var ErrUnknownMember = fmt.Errorf("unknown member: %w", ErrNotFound)

// ErrZeroAmount is returned when a live transaction carries a zero amount.
var ErrZeroAmount = fmt.Errorf("transaction amount must not be zero: %w", ErrValidation)

// ErrPartialCascade marks a member deletion that removed the member but not all of its transactions.
var ErrPartialCascade = errors.New("partial cascade failure")

// ErrConfirmationRequired is returned when an irreversible administrative action was not confirmed.
var ErrConfirmationRequired = errors.New("confirmation required")

// PartialCascadeError reports how far a member cascade delete got before failing.
// Remaining is -1 when the member's transactions could not be listed at all.
type PartialCascadeError struct {
	MemberID  string
	Deleted   int
	Remaining int
	Err       error
}

func (e *PartialCascadeError) Error() string {
	if e.Remaining < 0 {
		return fmt.Sprintf("member %s deleted but its transactions could not be listed: %v", e.MemberID, e.Err)
	}
	return fmt.Sprintf("member %s deleted but %d of %d transactions remain: %v",
		e.MemberID, e.Remaining, e.Deleted+e.Remaining, e.Err)
}

// Unwrap exposes both the cascade marker and the underlying store error.
func (e *PartialCascadeError) Unwrap() []error {
	return []error{ErrPartialCascade, e.Err}
}

// StoreError wraps err as ErrStoreUnavailable, keeping the original error in the chain.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
