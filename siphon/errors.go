package siphon

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/siphon_go/shared/helper"
)

// ErrChangeOverflow is returned by Change when the change relay is full.
// The change is dropped; the engine keeps running.
var ErrChangeOverflow = errors.New("siphon: change buffer overflow")

// ErrClosed is returned by Change once the engine has terminated.
var ErrClosed = errors.New("siphon: engine closed")

// ConfigErrorCode categorizes wiring mistakes.
type ConfigErrorCode string

const (
	// ErrCodeMissingLifecycle indicates no owning context was given.
	ErrCodeMissingLifecycle ConfigErrorCode = "MISSING_LIFECYCLE"

	// ErrCodeMissingInitialState indicates no initial state was given.
	ErrCodeMissingInitialState ConfigErrorCode = "MISSING_INITIAL_STATE"

	// ErrCodeMissingReducer indicates no reducer was given.
	ErrCodeMissingReducer ConfigErrorCode = "MISSING_REDUCER"

	// ErrCodeRegisterAfterCompose indicates a delegate registered after Compose.
	ErrCodeRegisterAfterCompose ConfigErrorCode = "REGISTER_AFTER_COMPOSE"

	// ErrCodeComposedTwice indicates Compose was called more than once.
	ErrCodeComposedTwice ConfigErrorCode = "COMPOSED_TWICE"

	// ErrCodeNotComposed indicates a change was submitted before Compose.
	ErrCodeNotComposed ConfigErrorCode = "NOT_COMPOSED"

	// ErrCodeDuplicateReducer indicates two reducers claim the same change type.
	ErrCodeDuplicateReducer ConfigErrorCode = "DUPLICATE_REDUCER"

	// ErrCodeDuplicateHandler indicates two handlers claim the same action type.
	ErrCodeDuplicateHandler ConfigErrorCode = "DUPLICATE_HANDLER"

	// ErrCodeForeignType indicates a reducer or handler registered for a type
	// outside the delegate's declared change or action set.
	ErrCodeForeignType ConfigErrorCode = "FOREIGN_TYPE"

	// ErrCodeInterfaceTag indicates registration against an interface type,
	// which no runtime value can carry as its dynamic type.
	ErrCodeInterfaceTag ConfigErrorCode = "INTERFACE_TAG"

	// ErrCodeUnmatchedChange indicates a change no reducer is registered for.
	ErrCodeUnmatchedChange ConfigErrorCode = "UNMATCHED_CHANGE"

	// ErrCodeMissingHandler indicates an action type with no handler at all.
	// Engines that perform nothing declare NoAction as their action type.
	ErrCodeMissingHandler ConfigErrorCode = "MISSING_HANDLER"

	// ErrCodeUnhandledAction indicates an action no handler is registered for.
	ErrCodeUnhandledAction ConfigErrorCode = "UNHANDLED_ACTION"
)

// ConfigError reports a wiring bug. It is never retried: builders return it,
// registration panics with it, and the engine terminates with it.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Tag names the offending change or action type, when there is one.
	Tag string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s (tag=%s)", e.Code, e.Message, e.Tag)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err wraps a ConfigError, optionally of one of
// the given codes.
func IsConfigError(err error, codes ...ConfigErrorCode) bool {
	var ce *ConfigError
	if !errors.As(err, &ce) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if ce.Code == code {
			return true
		}
	}
	return false
}

func newConfigError(code ConfigErrorCode, tag Tag, format string, args ...any) *ConfigError {
	ce := &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
	if tag.IsValid() {
		ce.Tag = tag.String()
	}
	return ce
}

// UnexpectedChangeError is raised by Unexpected when a reducer receives a
// change that makes no sense in the current state.
type UnexpectedChangeError struct {
	State  any
	Change any
}

func (e *UnexpectedChangeError) Error() string {
	return fmt.Sprintf("unexpected %s %+v in %s %+v",
		helper.TypeName(e.Change), e.Change, helper.TypeName(e.State), e.State)
}

// ReducerPanicError terminates an engine whose reducer panicked.
type ReducerPanicError struct {
	Change    any
	Recovered any
}

func (e *ReducerPanicError) Error() string {
	return fmt.Sprintf("reducer panicked on %s: %v", helper.TypeName(e.Change), e.Recovered)
}

// Unwrap exposes the panic value when it is an error, so errors.As finds an
// UnexpectedChangeError behind a reducer assertion.
func (e *ReducerPanicError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}
