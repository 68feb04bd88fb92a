package errx

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an AppError so the CLI can pick an exit status.
type Code string

const (
	CodeInternal           Code = "internal"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnknownAction      Code = "unknown_action"
	CodeInvalidArguments   Code = "invalid_arguments"
	CodePlannerUnavailable Code = "planner_unavailable"
	CodeMalformedResponse  Code = "malformed_response"
	CodeBudgetExceeded     Code = "budget_exceeded"
	CodeCanceled           Code = "canceled"
	CodeRedis              Code = "redis"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"

	UnknownActionMessage      = "planner proposed an unknown action"
	InvalidArgumentsMessage   = "action arguments do not match the action schema"
	PlannerUnavailableMessage = "planner is unavailable"
	MalformedResponseMessage  = "planner response is malformed"
	BudgetExceededMessage     = "session budget exceeded"
	CanceledMessage           = "session canceled"
	InvalidInputMessage       = "invalid input"
)

// Sentinels for errors.Is checks. Every AppError built by the constructors
// below wraps exactly one of them.
var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrInvalidArguments   = errors.New("invalid arguments")
	ErrPlannerUnavailable = errors.New("planner unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrBudgetExceeded     = errors.New("budget exceeded")
	ErrCanceled           = errors.New("canceled")
	ErrInvalidInput       = errors.New("invalid input")
)

// AppError wraps an underlying error with a code and a safe message.
type AppError struct {
	Err     error
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, code Code, message string) *AppError {
	return &AppError{
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// UnknownAction reports a planner call whose name is absent from the catalogue.
func UnknownAction(name string) *AppError {
	return New(fmt.Errorf("%w: %q", ErrUnknownAction, name), CodeUnknownAction, UnknownActionMessage)
}

// InvalidArguments reports every schema problem found for one action call.
func InvalidArguments(action string, problems []string) *AppError {
	return New(
		fmt.Errorf("%w for %s: %s", ErrInvalidArguments, action, strings.Join(problems, "; ")),
		CodeInvalidArguments,
		InvalidArgumentsMessage,
	)
}

// PlannerUnavailable wraps a transport, auth or quota failure of the planner client.
func PlannerUnavailable(err error) *AppError {
	return New(fmt.Errorf("%w: %w", ErrPlannerUnavailable, err), CodePlannerUnavailable, PlannerUnavailableMessage)
}

// MalformedResponse reports a planner reply that cannot be turned into a call.
func MalformedResponse(reason string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrMalformedResponse, reason), CodeMalformedResponse, MalformedResponseMessage)
}

// BudgetExceeded reports a session that hit its round or wall-clock limit.
func BudgetExceeded(reason string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrBudgetExceeded, reason), CodeBudgetExceeded, BudgetExceededMessage)
}

// Canceled reports a session stopped by its caller's context.
func Canceled(err error) *AppError {
	return New(fmt.Errorf("%w: %w", ErrCanceled, err), CodeCanceled, CanceledMessage)
}

// InvalidInput reports a rejected session input.
func InvalidInput(reason string) *AppError {
	return New(fmt.Errorf("%w: %s", ErrInvalidInput, reason), CodeInvalidInput, InvalidInputMessage)
}

// Internal wraps an unexpected failure; AppErrors pass through untouched.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(err, CodeInternal, SystemErrorMessage)
}

// CodeOf returns the code of the first AppError in the chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeInvalidInput:
		return 2
	case CodeUnknownAction, CodeInvalidArguments, CodeMalformedResponse:
		return 3
	case CodePlannerUnavailable, CodeRedis:
		return 4
	case CodeBudgetExceeded:
		return 5
	case CodeCanceled:
		return 130
	default:
		return 1
	}
}
