package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("service not found")
	ErrAlreadyRegistered  = errors.New("service already registered")
	ErrAlreadyConstructed = errors.New("service already constructed")
	ErrInvalidOption      = errors.New("invalid provider option")
	ErrNilInstance        = errors.New("provider returned nil")
	ErrNoRequestScope     = errors.New("request scope not found in context")
)

type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Chain, " -> ")
}

type ProviderError struct {
	Key   string
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failed for %s: %v", e.Key, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

type DecoratorError struct {
	Key   string
	Cause error
}

func (e *DecoratorError) Error() string {
	return fmt.Sprintf("decorator failed for %s: %v", e.Key, e.Cause)
}

func (e *DecoratorError) Unwrap() error {
	return e.Cause
}
