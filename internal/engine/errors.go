package engine

import (
	"errors"
	"fmt"
)

// TestError is the normalized failure delivered for a test.
//
// Every way a test can fail (a failed check, an error returned by the body, a
// panic, a timed out suspension, a cancelled context) ends up as a TestError,
// so the Runner and its listeners only ever see one shape.
type TestError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the human-readable message. For assertion and timeout
	// failures this is exactly the message supplied by the test.
	Message string

	// Test is the assertion text of the failing test, when known.
	Test string

	// Err is the underlying cause (a returned error, a panic value wrapped
	// in PanicError, a context error).
	Err error
}

// ErrorCode categorizes test failures.
type ErrorCode string

const (
	// ErrCodeAssertion indicates a check failed while the body was running
	// and no suspension had been requested.
	ErrCodeAssertion ErrorCode = "ASSERTION_FAILED"

	// ErrCodeAsyncAssertion indicates a check failed after the test asked
	// to wait for an asynchronous outcome.
	ErrCodeAsyncAssertion ErrorCode = "ASYNC_ASSERTION_FAILED"

	// ErrCodeTimeout indicates a suspension expired before it was resumed.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeTestError indicates the body returned a non-nil error.
	ErrCodeTestError ErrorCode = "TEST_ERROR"

	// ErrCodePanic indicates the body panicked.
	ErrCodePanic ErrorCode = "PANIC"

	// ErrCodeSetUp indicates the suite's setUp hook failed, so the body never ran.
	ErrCodeSetUp ErrorCode = "SETUP_FAILED"

	// ErrCodeCancelled indicates the run context was cancelled.
	ErrCodeCancelled ErrorCode = "CANCELLED"

	// ErrCodeSuspensionPending indicates Wait was called while a suspension
	// was already pending for the same execution.
	ErrCodeSuspensionPending ErrorCode = "SUSPENSION_PENDING"
)

// ErrSuspensionPending is the cause carried by SUSPENSION_PENDING failures.
var ErrSuspensionPending = errors.New("suspension already pending")

// Error implements the error interface. It returns the bare message so that
// listeners render exactly what the test asked for.
func (e *TestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *TestError) Unwrap() error {
	return e.Err
}

// String renders the error with its code and test, for logs.
func (e *TestError) String() string {
	if e.Test != "" {
		return fmt.Sprintf("%s: %s (test=%q)", e.Code, e.Error(), e.Test)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Error())
}

// PanicError wraps a value recovered from a panicking test body or hook.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// CodeOf returns the failure code of err, or "" if err is not a TestError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var te *TestError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsTimeout reports whether err is a suspension timeout.
func IsTimeout(err error) bool {
	return CodeOf(err) == ErrCodeTimeout
}

// IsAssertion reports whether err is a failed check, synchronous or not.
func IsAssertion(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeAssertion || code == ErrCodeAsyncAssertion
}

// IsCancelled reports whether err came from a cancelled run context.
func IsCancelled(err error) bool {
	return CodeOf(err) == ErrCodeCancelled
}

func newAssertionError(code ErrorCode, message string) *TestError {
	return &TestError{Code: code, Message: message}
}

func newTimeoutError(message string) *TestError {
	return &TestError{Code: ErrCodeTimeout, Message: message}
}

func newCancelledError(cause error) *TestError {
	return &TestError{Code: ErrCodeCancelled, Message: "test cancelled", Err: cause}
}

func newSuspensionPendingError() *TestError {
	return &TestError{
		Code:    ErrCodeSuspensionPending,
		Message: ErrSuspensionPending.Error(),
		Err:     ErrSuspensionPending,
	}
}

// normalize turns any failure into a TestError tagged with the test name.
// Errors that are already TestErrors keep their code.
func normalize(test string, code ErrorCode, err error) *TestError {
	var te *TestError
	if errors.As(err, &te) {
		if te.Test == "" {
			te.Test = test
		}
		return te
	}
	return &TestError{Code: code, Message: err.Error(), Test: test, Err: err}
}
