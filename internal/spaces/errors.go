package spaces

import "fmt"

// FailureKind is the closed set of space-creation failures.
type FailureKind int

const (
	// KindGeneric covers every failure that is not classified below,
	// including transport errors and malformed success bodies.
	KindGeneric FailureKind = iota
	// KindAuthorization means the backend refused to create spaces (401).
	KindAuthorization
	// KindCapacityLimit means the backend's active-space limit is reached (419).
	KindCapacityLimit
)

// StatusCapacityLimit is the non-standard status the backend uses when the
// active space limit is reached.
const StatusCapacityLimit = 419

// String returns the kind's snake_case name.
func (k FailureKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindCapacityLimit:
		return "capacity_limit"
	default:
		return "generic"
	}
}

// message returns the fixed error text for the kind.
func (k FailureKind) message() string {
	switch k {
	case KindAuthorization:
		return "Not authorized to create space"
	case KindCapacityLimit:
		return "Maximum active space limit reached"
	default:
		return "Error creating space"
	}
}

// CreationError is the only error type CreateSpace returns.
type CreationError struct {
	Kind FailureKind
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Err is the underlying cause, if any.
	Err error
}

// Error returns the kind's fixed message, with the cause appended for
// generic failures.
func (e *CreationError) Error() string {
	if e.Kind == KindGeneric && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind.message(), e.Err)
	}
	return e.Kind.message()
}

// Unwrap returns the underlying cause.
func (e *CreationError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-success HTTP status to a failure kind.
func classifyStatus(status int) FailureKind {
	switch status {
	case 401:
		return KindAuthorization
	case StatusCapacityLimit:
		return KindCapacityLimit
	default:
		return KindGeneric
	}
}
