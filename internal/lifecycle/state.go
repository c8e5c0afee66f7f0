// Package lifecycle holds the state machines that govern remote reads:
// a single-shot Fetch and a recurring Poller built on top of it.
//
// Transition table for one Fetch:
//
//	Idle | Success | Failure --Start--> Loading
//	Loading --Start--> Loading            (previous request superseded)
//	Loading --resolve ok--> Success
//	Loading --resolve err--> Failure
//
// Only the most recently started request may resolve the state. Earlier
// requests have their context cancelled and their results dropped.
// Cancellation ends observation, not the underlying operation: a request
// function that ignores its context keeps running, but nothing it returns
// is ever observed.
package lifecycle

import (
	"errors"
	"time"
)

// Phase is the tag of a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ErrorInfo is the payload of a Failure state.
type ErrorInfo struct {
	Message string
	Cause   error
}

func (e *ErrorInfo) Error() string {
	return e.Message
}

func (e *ErrorInfo) Unwrap() error {
	return e.Cause
}

// Describe normalizes any error into an ErrorInfo. Errors that already are an
// ErrorInfo are returned unchanged.
func Describe(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	return &ErrorInfo{Message: err.Error(), Cause: err}
}

// State is a snapshot of a lifecycle. Exactly one phase holds; Value and
// FetchedAt are meaningful only in PhaseSuccess, Err and FailedAt only in
// PhaseFailure.
type State[T any] struct {
	Phase     Phase
	Value     T
	FetchedAt time.Time
	Err       *ErrorInfo
	FailedAt  time.Time
}

func (s State[T]) IsIdle() bool    { return s.Phase == PhaseIdle }
func (s State[T]) IsLoading() bool { return s.Phase == PhaseLoading }
func (s State[T]) IsSuccess() bool { return s.Phase == PhaseSuccess }
func (s State[T]) IsFailure() bool { return s.Phase == PhaseFailure }

func loading[T any]() State[T] {
	return State[T]{Phase: PhaseLoading}
}

func succeeded[T any](v T, at time.Time) State[T] {
	return State[T]{Phase: PhaseSuccess, Value: v, FetchedAt: at}
}

func failed[T any](err error, at time.Time) State[T] {
	return State[T]{Phase: PhaseFailure, Err: Describe(err), FailedAt: at}
}
