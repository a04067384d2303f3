package drive

import "errors"

// Kind groups engine errors by how a caller should react to them.
type Kind int

const (
	// KindUnknown is any error the engine did not classify, usually a store failure.
	KindUnknown Kind = iota
	// KindValidation means the request failed a precondition. Nothing was written.
	KindValidation
	// KindConflict means the session state disagreed with the request. Re-fetch and retry.
	KindConflict
	// KindIntegrity means stored data violates an invariant.
	KindIntegrity
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a classified engine error. Sentinels are compared with errors.Is.
type Error struct {
	Kind Kind
	// Code is the stable name reported to API clients.
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidPosition = newError(KindValidation, "InvalidPosition", "insertion position out of range")
	ErrUnknownTier     = newError(KindValidation, "UnknownTier", "unknown or inactive tier")
	ErrInvalidRating   = newError(KindValidation, "InvalidRating", "invalid rating")
	ErrInvalidCombo    = newError(KindValidation, "InvalidCombo", "invalid combo request")
	ErrInvalidTierBand = newError(KindValidation, "InvalidTierBand", "tier price band rejected")
	ErrNoProducts      = newError(KindValidation, "NoProducts", "catalog has no products for this tier")
	ErrInvalidOutcome  = newError(KindValidation, "InvalidOutcome", "unknown purchase outcome")
	ErrInvalidProduct  = newError(KindValidation, "InvalidProduct", "invalid product")

	ErrConcurrentModification = newError(KindConflict, "ConcurrentModification", "session was modified concurrently")
	ErrNotCurrentTask         = newError(KindConflict, "NotCurrentTask", "task is not the current task")
	ErrDuplicateRating        = newError(KindConflict, "DuplicateRating", "rating bonus already granted for this task")
	ErrTaskNotCompleted       = newError(KindConflict, "TaskNotCompleted", "task must be completed before rating")
	ErrSessionExists          = newError(KindConflict, "SessionExists", "user already has an open drive session")

	ErrInvalidTierConfig = newError(KindIntegrity, "InvalidTierConfig", "stored tier config violates its price band")
	ErrCorruptQueue      = newError(KindIntegrity, "CorruptQueue", "task queue violates ordering invariants")

	ErrSessionNotFound = newError(KindNotFound, "SessionNotFound", "drive session not found")
	ErrTaskNotFound    = newError(KindNotFound, "TaskNotFound", "task item not found")
	ErrProductNotFound = newError(KindNotFound, "ProductNotFound", "product not found")

	ErrForbidden = newError(KindForbidden, "Forbidden", "caller may not perform this operation")
)

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the API code of err, or an empty string.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
