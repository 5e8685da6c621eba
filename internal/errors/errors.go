// Package errors provides standardized error types for vhostfrag.
//
// The errors package defines the error taxonomy of the assembly engine and the
// CLI around it, so that every layer reports failures with a code that callers
// can match on and enough context to print an actionable message.
//
// # Error Types
//
// VHostError is the primary error type, containing:
//   - Code: Categorizes the error (MISSING_GROUP, INVALID_TARGET, etc.)
//   - Message: Human-readable error description
//   - Target: The target identity involved, e.g. "15-default-80" (if applicable)
//   - Source: The declaration or fragment label involved (if applicable)
//   - Groups: The parameter group names that were checked (MISSING_GROUP, CONFLICTING_GROUPS)
//   - Err: The underlying wrapped error (if any)
//
// # Assembly Errors
//
// Three codes are raised by the assembly core and are never retried:
//
//	MISSING_GROUP       no recognized parameter group was provided
//	INVALID_TARGET      the vhost name or port cannot form a target
//	DUPLICATE_FRAGMENT  two fragments claim the same (order, label) slot
//
// # Usage
//
//	return errors.MissingGroup("myproxy", []string{"proxy_pass", "proxy_match", "proxy_dest"})
//	return errors.InvalidTarget("default:70000", "port 70000 out of range 1-65535")
//	return errors.DuplicateFragment("15-default-80", 170, "default-myproxy-proxy")
//
// # Error Checking
//
// Use errors.Is for sentinel comparison. Comparison is by code:
//
//	if errors.Is(err, errors.ErrMissingGroup) {
//	    // Handle missing group
//	}
//
// Use errors.As for type assertion:
//
//	var vhostErr *errors.VHostError
//	if errors.As(err, &vhostErr) {
//	    fmt.Printf("code=%s target=%s\n", vhostErr.Code, vhostErr.Target)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeMissingGroup      ErrorCode = "MISSING_GROUP"      // No parameter group provided
	ErrCodeConflictingGroups ErrorCode = "CONFLICTING_GROUPS" // Several groups under the exclusive policy
	ErrCodeInvalidTarget     ErrorCode = "INVALID_TARGET"     // Vhost identity cannot be resolved
	ErrCodeDuplicateFragment ErrorCode = "DUPLICATE_FRAGMENT" // Ordering slot claimed twice
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"          // Resource not found
	ErrCodeValidation        ErrorCode = "VALIDATION"         // Input validation failed
	ErrCodeRender            ErrorCode = "RENDER"             // Template rendering failed
	ErrCodePermission        ErrorCode = "PERMISSION"         // Permission denied
	ErrCodeConfig            ErrorCode = "CONFIG"             // Configuration error
	ErrCodeDriver            ErrorCode = "DRIVER"             // Web server driver error
	ErrCodeInternal          ErrorCode = "INTERNAL"           // Internal/unexpected error
)

// VHostError represents a structured error with context about the operation.
type VHostError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Target  string    // Target identity (if applicable)
	Source  string    // Declaration or fragment label (if applicable)
	Groups  []string  // Checked or conflicting group names (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *VHostError) Error() string {
	var prefix []string
	if e.Target != "" {
		prefix = append(prefix, "target "+e.Target)
	}
	if e.Source != "" {
		prefix = append(prefix, e.Source)
	}

	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}

	if len(prefix) == 0 {
		return msg
	}
	return strings.Join(prefix, ": ") + ": " + msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *VHostError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *VHostError) Is(target error) bool {
	t, ok := target.(*VHostError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrMissingGroup indicates a declaration provided none of its parameter groups.
	ErrMissingGroup = &VHostError{Code: ErrCodeMissingGroup, Message: "no parameter group provided"}

	// ErrConflictingGroups indicates several groups were provided under the exclusive policy.
	ErrConflictingGroups = &VHostError{Code: ErrCodeConflictingGroups, Message: "conflicting parameter groups"}

	// ErrInvalidTarget indicates the vhost name, port or priority cannot form a target.
	ErrInvalidTarget = &VHostError{Code: ErrCodeInvalidTarget, Message: "invalid target"}

	// ErrDuplicateFragment indicates two fragments share an (order, label) pair in one target.
	ErrDuplicateFragment = &VHostError{Code: ErrCodeDuplicateFragment, Message: "duplicate fragment"}

	// ErrTargetNotFound indicates no vhost in the configuration resolves to the target.
	ErrTargetNotFound = &VHostError{Code: ErrCodeNotFound, Message: "target not found"}

	// ErrInvalidDeclaration indicates an entry is missing a required field.
	ErrInvalidDeclaration = &VHostError{Code: ErrCodeValidation, Message: "invalid declaration"}

	// ErrTemplate indicates a directive template failed to parse or execute.
	ErrTemplate = &VHostError{Code: ErrCodeRender, Message: "template error"}

	// ErrPermissionDenied indicates insufficient privileges for the operation.
	ErrPermissionDenied = &VHostError{Code: ErrCodePermission, Message: "permission denied"}

	// ErrConfigInvalid indicates the configuration is invalid or corrupt.
	ErrConfigInvalid = &VHostError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrDriverNotFound indicates the specified driver is not available.
	ErrDriverNotFound = &VHostError{Code: ErrCodeDriver, Message: "driver not found"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &VHostError{Code: ErrCodePermission, Message: "root privileges required"}

	// ErrRegistryFlushed indicates a registry was used after its single flush.
	ErrRegistryFlushed = &VHostError{Code: ErrCodeInternal, Message: "registry already flushed"}
)

// MissingGroup creates the error raised when none of the checked groups is provided.
// The message lists the groups in the order they were checked.
func MissingGroup(source string, groups []string) error {
	return &VHostError{
		Code:    ErrCodeMissingGroup,
		Message: fmt.Sprintf("At least one of %s must be set", strings.Join(groups, ", ")),
		Source:  source,
		Groups:  groups,
	}
}

// ConflictingGroups creates the error raised when the exclusive policy sees several groups.
func ConflictingGroups(source string, groups []string) error {
	return &VHostError{
		Code:    ErrCodeConflictingGroups,
		Message: fmt.Sprintf("Only one of %s may be set", strings.Join(groups, ", ")),
		Source:  source,
		Groups:  groups,
	}
}

// InvalidTarget creates an error for vhost parameters that cannot form a target.
func InvalidTarget(target, reason string) error {
	return &VHostError{
		Code:    ErrCodeInvalidTarget,
		Message: reason,
		Target:  target,
	}
}

// DuplicateFragment creates an error for a second fragment in an occupied slot.
func DuplicateFragment(target string, order int, label string) error {
	return &VHostError{
		Code:    ErrCodeDuplicateFragment,
		Message: fmt.Sprintf("fragment %q already registered at order %d", label, order),
		Target:  target,
		Source:  label,
	}
}

// NotFound creates an error for a target that is not declared.
func NotFound(target string) error {
	return &VHostError{
		Code:    ErrCodeNotFound,
		Message: "target not found",
		Target:  target,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &VHostError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Invalid creates a validation error attributed to a declaration.
func Invalid(source, msg string) error {
	return &VHostError{
		Code:    ErrCodeValidation,
		Message: msg,
		Source:  source,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &VHostError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapTarget creates an error with target context and underlying error.
func WrapTarget(code ErrorCode, target string, err error) error {
	return &VHostError{
		Code:   code,
		Target: target,
		Err:    err,
	}
}

// CodeOf returns the code of the first VHostError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var vhostErr *VHostError
	if errors.As(err, &vhostErr) {
		return vhostErr.Code
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// Join is a re-export of errors.Join for convenience.
var Join = errors.Join
