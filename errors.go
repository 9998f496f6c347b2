package hilt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/ledger"
	"github.com/danpasecinic/hilt/internal/lifecycle"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeServiceNotFound
	ErrCodeCircularDependency
	ErrCodeDuplicateService
	ErrCodeResolutionFailed
	ErrCodeProviderFailed
	ErrCodeStartupFailed
	ErrCodeShutdownFailed
	ErrCodeHealthCheckFailed
	ErrCodeScopeNotFound
	ErrCodeValidationFailed
	ErrCodeDuplicateConstruction
	ErrCodeInvalidStateTransition
	ErrCodeContainerStopped
	ErrCodeInvalidOption
	ErrCodeModuleApplyFailed
	ErrCodeDecoratorFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                "UNKNOWN",
	ErrCodeServiceNotFound:        "SERVICE_NOT_FOUND",
	ErrCodeCircularDependency:     "CIRCULAR_DEPENDENCY",
	ErrCodeDuplicateService:       "DUPLICATE_SERVICE",
	ErrCodeResolutionFailed:       "RESOLUTION_FAILED",
	ErrCodeProviderFailed:         "PROVIDER_FAILED",
	ErrCodeStartupFailed:          "STARTUP_FAILED",
	ErrCodeShutdownFailed:         "SHUTDOWN_FAILED",
	ErrCodeHealthCheckFailed:      "HEALTH_CHECK_FAILED",
	ErrCodeScopeNotFound:          "SCOPE_NOT_FOUND",
	ErrCodeValidationFailed:       "VALIDATION_FAILED",
	ErrCodeDuplicateConstruction:  "DUPLICATE_CONSTRUCTION",
	ErrCodeInvalidStateTransition: "INVALID_STATE_TRANSITION",
	ErrCodeContainerStopped:       "CONTAINER_STOPPED",
	ErrCodeInvalidOption:          "INVALID_OPTION",
	ErrCodeModuleApplyFailed:      "MODULE_APPLY_FAILED",
	ErrCodeDecoratorFailed:        "DECORATOR_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, &Error{Code: c})
// works at every wrapping depth.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// wrap maps an internal error to its public code. service names the key the
// caller asked for. Errors that already carry a code are returned unchanged.
func wrap(service string, err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(*Error); ok {
		return err
	}

	var (
		transition *lifecycle.TransitionError
		stopErr    *lifecycle.StopError
		hookErr    *lifecycle.HookError
		cycle      *container.CycleError
		duplicate  *ledger.DuplicateError
		decorator  *container.DecoratorError
		provider   *container.ProviderError
	)

	switch {
	case errors.As(err, &transition):
		return newError(ErrCodeInvalidStateTransition, "invalid lifecycle transition", err)
	case errors.As(err, &stopErr):
		return newError(ErrCodeShutdownFailed, "stop hooks failed", err).WithService(service)
	case errors.As(err, &hookErr):
		return newError(ErrCodeStartupFailed, "start hook failed", err).WithService(hookErr.Component)
	case errors.Is(err, lifecycle.ErrStopped):
		return newError(ErrCodeContainerStopped, "container is stopping or stopped", err).WithService(service)
	case errors.As(err, &cycle):
		return newError(ErrCodeCircularDependency, "circular dependency", err).WithStack(cycle.Chain)
	case errors.As(err, &duplicate):
		return newError(ErrCodeDuplicateConstruction, "instance already constructed", err).WithService(duplicate.Key)
	case errors.Is(err, container.ErrAlreadyConstructed):
		return newError(ErrCodeDuplicateConstruction, "instance already constructed", err).WithService(service)
	case errors.Is(err, container.ErrNotFound):
		return newError(ErrCodeServiceNotFound, "no provider registered", err).WithService(service)
	case errors.Is(err, container.ErrAlreadyRegistered):
		return newError(ErrCodeDuplicateService, "provider already registered", err).WithService(service)
	case errors.Is(err, container.ErrInvalidOption):
		return newError(ErrCodeInvalidOption, "invalid provider option", err).WithService(service)
	case errors.Is(err, container.ErrNoRequestScope):
		return newError(ErrCodeScopeNotFound, "request scope not found; use WithRequestScope(ctx)", err).
			WithService(service)
	case errors.As(err, &decorator):
		return newError(ErrCodeDecoratorFailed, "decorator returned error", err).WithService(decorator.Key)
	case errors.As(err, &provider):
		return newError(ErrCodeProviderFailed, "provider returned error", err).WithService(provider.Key)
	case errors.Is(err, container.ErrNilInstance):
		return newError(ErrCodeProviderFailed, "provider returned nil", err).WithService(service)
	default:
		return newError(ErrCodeResolutionFailed, "failed to resolve", err).WithService(service)
	}
}

func errResolutionFailed(service string, cause error) *Error {
	return newError(ErrCodeResolutionFailed, fmt.Sprintf("failed to resolve %s", service), cause).
		WithService(service)
}

func errInvalidOption(service, message string) *Error {
	return newError(ErrCodeInvalidOption, message, nil).WithService(service)
}

func hasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeServiceNotFound)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsDuplicateService(err error) bool {
	return hasCode(err, ErrCodeDuplicateService)
}

func IsResolutionFailed(err error) bool {
	return hasCode(err, ErrCodeResolutionFailed)
}

func IsProviderFailed(err error) bool {
	return hasCode(err, ErrCodeProviderFailed)
}

func IsStartupFailed(err error) bool {
	return hasCode(err, ErrCodeStartupFailed)
}

func IsShutdownFailed(err error) bool {
	return hasCode(err, ErrCodeShutdownFailed)
}

func IsDuplicateConstruction(err error) bool {
	return hasCode(err, ErrCodeDuplicateConstruction)
}

func IsInvalidStateTransition(err error) bool {
	return hasCode(err, ErrCodeInvalidStateTransition)
}

func IsContainerStopped(err error) bool {
	return hasCode(err, ErrCodeContainerStopped)
}

func IsInvalidOption(err error) bool {
	return hasCode(err, ErrCodeInvalidOption)
}

// StopFailure is one stop hook that returned an error during Stop.
type StopFailure struct {
	Service string
	Seq     uint64
	Err     error
}

// StopFailures lists every stop hook failure carried by err, in the order the
// hooks ran.
func StopFailures(err error) []StopFailure {
	var stopErr *lifecycle.StopError
	if !errors.As(err, &stopErr) {
		return nil
	}

	failures := make([]StopFailure, 0, len(stopErr.Failures))
	for _, f := range stopErr.Failures {
		failures = append(failures, StopFailure{Service: f.Component, Seq: f.Seq, Err: f.Cause})
	}
	return failures
}
