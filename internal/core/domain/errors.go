package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindDependency
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

type ErrCode string

const (
	ErrWindowTooEarly        ErrCode = "WINDOW_TOO_EARLY"
	ErrWindowClosed          ErrCode = "WINDOW_CLOSED"
	ErrNoPhotos              ErrCode = "NO_PHOTOS"
	ErrTooManyPhotos         ErrCode = "TOO_MANY_PHOTOS"
	ErrNotAuthorized         ErrCode = "NOT_AUTHORIZED"
	ErrDuplicateActiveProof  ErrCode = "DUPLICATE_ACTIVE_PROOF"
	ErrProofAlreadyApproved  ErrCode = "PROOF_ALREADY_APPROVED"
	ErrBookingCancelled      ErrCode = "BOOKING_CANCELLED"
	ErrInvalidBooking        ErrCode = "INVALID_BOOKING"
	ErrDescriptionTooShort   ErrCode = "DESCRIPTION_TOO_SHORT"
	ErrNotEnoughPhotos       ErrCode = "NOT_ENOUGH_PHOTOS"
	ErrInvalidIssueType      ErrCode = "INVALID_ISSUE_TYPE"
	ErrAutoApprovalNotDue    ErrCode = "AUTO_APPROVAL_NOT_DUE"
	ErrReviewWindowExpired   ErrCode = "REVIEW_WINDOW_EXPIRED"
	ErrProofNotPending       ErrCode = "PROOF_NOT_PENDING"
	ErrUploadFailed          ErrCode = "UPLOAD_FAILED"
	ErrStoreUnavailable      ErrCode = "STORE_UNAVAILABLE"
	ErrPayoutAlreadyRecorded ErrCode = "PAYOUT_ALREADY_RECORDED"
	ErrInvalidDayCount       ErrCode = "INVALID_DAY_COUNT"
	ErrPayoutOutOfRange      ErrCode = "PAYOUT_OUT_OF_RANGE"
	ErrNotFound              ErrCode = "NOT_FOUND"
)

var codeKinds = map[ErrCode]ErrorKind{
	ErrWindowTooEarly:        KindValidation,
	ErrWindowClosed:          KindValidation,
	ErrNoPhotos:              KindValidation,
	ErrTooManyPhotos:         KindValidation,
	ErrNotAuthorized:         KindUnauthorized,
	ErrDuplicateActiveProof:  KindValidation,
	ErrProofAlreadyApproved:  KindValidation,
	ErrBookingCancelled:      KindValidation,
	ErrInvalidBooking:        KindValidation,
	ErrDescriptionTooShort:   KindValidation,
	ErrNotEnoughPhotos:       KindValidation,
	ErrInvalidIssueType:      KindValidation,
	ErrAutoApprovalNotDue:    KindValidation,
	ErrReviewWindowExpired:   KindValidation,
	ErrProofNotPending:       KindConflict,
	ErrUploadFailed:          KindDependency,
	ErrStoreUnavailable:      KindDependency,
	ErrPayoutAlreadyRecorded: KindInvariant,
	ErrInvalidDayCount:       KindInvariant,
	ErrPayoutOutOfRange:      KindInvariant,
	ErrNotFound:              KindNotFound,
}

// Error is the structured failure returned by every workflow operation.
// Details carries the exact dates and counts a caller needs to explain
// the rejection to a user.
type Error struct {
	Code    ErrCode
	Message string
	Details map[string]any
	Err     error
}

func NewError(code ErrCode, msg string, details map[string]any) *Error {
	return &Error{Code: code, Message: msg, Details: details}
}

func Errorf(code ErrCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() ErrorKind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindInvariant
}

// Is matches on code so callers can write errors.Is(err, domain.Conflict).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// With adds a detail key.
func (e *Error) With(key string, v any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = v
	return e
}

// Code extracts the error code, or "" for errors that did not originate here.
func Code(err error) ErrCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind()
	}
	return 0
}

func IsConflict(err error) bool { return KindOf(err) == KindConflict }

var (
	Conflict = &Error{Code: ErrProofNotPending}
	NotFound = &Error{Code: ErrNotFound}
)
