// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
// Every workflow failure maps to exactly one of the four categories the
// API surfaces (not-found, forbidden, invalid-input, conflict) plus a
// catch-all internal category.
var (
	// ErrNotFound - an entity or a referenced opportunity/application is absent.
	ErrNotFound = errors.New("entity not found")

	// ErrForbidden - role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput - malformed input, wrong opportunity type, or a
	// state-gating violation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict - duplicate submission or concurrent uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrInternal - infrastructure failure surfaced as server-error.
	ErrInternal = errors.New("internal error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "application", "progress", "authz"
	Op      string // Operation that failed, e.g., "Submit", "AppendUpdate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Application domain errors
var (
	ErrApplicationNotFound  = NewDomainError("application", "Find", ErrNotFound, "application not found")
	ErrDuplicateApplication = NewDomainError("application", "Submit", ErrConflict, "you have already applied to this opportunity")
	ErrInvalidStatus        = NewDomainError("application", "SetStatus", ErrInvalidInput, "invalid application status")
	ErrMissingResume        = NewDomainError("application", "Submit", ErrInvalidInput, "a resume file or resume link is required")
	ErrNotApplicant         = NewDomainError("application", "Authorize", ErrForbidden, "application belongs to another student")
)

// Opportunity domain errors
var (
	ErrOpportunityNotFound = NewDomainError("opportunity", "Resolve", ErrNotFound, "opportunity not found")
	ErrInvalidOpportunity  = NewDomainError("opportunity", "Validate", ErrInvalidInput, "invalid opportunity type")
)

// Progress ledger errors
var (
	ErrEntryNotFound         = NewDomainError("progress", "Find", ErrNotFound, "no progress tracking entry for this application")
	ErrRemarkNotFound        = NewDomainError("progress", "FindRemark", ErrNotFound, "remark not found")
	ErrNotAcceptedProject    = NewDomainError("progress", "Validate", ErrInvalidInput, "progress tracking requires an accepted project application")
	ErrNotSubmissionEligible = NewDomainError("progress", "UploadSubmission", ErrInvalidInput, "project is not yet eligible for submission")
	ErrNoSubmission          = NewDomainError("progress", "DownloadSubmission", ErrNotFound, "no submission document uploaded")
	ErrBackwardTransition    = NewDomainError("progress", "AppendUpdate", ErrInvalidInput, "progress may not move backwards")
)

// Authorization errors
var (
	ErrNotPoster      = NewDomainError("authz", "CheckRelation", ErrForbidden, "only the opportunity poster may do this")
	ErrNotStudent     = NewDomainError("authz", "CheckRole", ErrForbidden, "only students may do this")
	ErrUnknownRole    = NewDomainError("authz", "ParseRole", ErrInvalidInput, "unrecognized role")
	ErrActorMismatch  = NewDomainError("authz", "CheckRelation", ErrForbidden, "actor may not act on this application")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden checks if the error is a "forbidden" error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInvalidInput checks if the error is an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
