package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure. Every kind maps to a stable
// process exit code so operators and wrapper scripts can branch on it.
type ErrorKind string

const (
	KindConfig         ErrorKind = "CONFIG"
	KindDbConnectivity ErrorKind = "DB_CONNECTIVITY"
	KindValidation     ErrorKind = "VALIDATION"
	KindPrint          ErrorKind = "PRINT"
	KindInternal       ErrorKind = "INTERNAL"
)

// Exit codes per kind. 0 is reserved for success.
const (
	ExitOK             = 0
	ExitConfig         = 2
	ExitDbConnectivity = 3
	ExitValidation     = 4
	ExitPrint          = 5
	ExitInternal       = 10
)

// Error is the single error type for all pipeline failures. Components
// return *Error rather than defining their own hierarchies; the kind,
// exit code and remediation hint travel with the value.
type Error struct {
	Kind     ErrorKind
	ExitCode int
	Hint     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, exitCode int, hint, message string, cause error) *Error {
	return &Error{
		Kind:     kind,
		ExitCode: exitCode,
		Hint:     hint,
		Message:  message,
		cause:    cause,
	}
}

// NewConfigError reports a missing or malformed configuration input
// (config key, CSV matrix, printer inventory, routing table).
func NewConfigError(message string, cause error) *Error {
	return newError(KindConfig, ExitConfig, "check configuration files and WMS_* environment variables", message, cause)
}

// NewDbError reports a failure communicating with the WMS store.
func NewDbError(message string, cause error) *Error {
	return newError(KindDbConnectivity, ExitDbConnectivity, "verify ORACLE_* credentials and site host, then run 'wms-labeler db-test'", message, cause)
}

// NewValidationError reports invalid caller input or a shipment-graph
// defect (blank id, unknown routing operator, missing required field).
func NewValidationError(message string) *Error {
	return newError(KindValidation, ExitValidation, "correct the input or the upstream shipment data and retry", message, nil)
}

// NewPrintError reports a transport failure after retry exhaustion or an
// interrupted retry wait.
func NewPrintError(message string, cause error) *Error {
	return newError(KindPrint, ExitPrint, "check printer power and network reachability; resume the job once restored", message, cause)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *Error {
	return newError(KindInternal, ExitInternal, "this is a defect; capture the log and report it", message, cause)
}

// ExitCodeFor maps any error to its process exit code. A nil error maps
// to ExitOK, an untyped error to ExitInternal.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode
	}
	return ExitInternal
}

// KindOf returns the kind of a pipeline error, or KindInternal for any
// untyped error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
