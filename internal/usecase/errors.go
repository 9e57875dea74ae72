package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrAlreadyExists         = errors.New("already exists")
	ErrActionDisabled        = errors.New("action disabled")
	ErrNoBotUploaded         = errors.New("no bot uploaded")
	ErrNoEligiblePlayers     = errors.New("no eligible players")
	ErrDuplicateRequest      = errors.New("duplicate match request")
	ErrUpstream              = errors.New("matchmaking service error")
	ErrConfigUpdateFailed    = errors.New("config update failed")
)

// UpstreamError carries what the matchmaking service answered with. It
// unwraps to ErrUpstream.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status=%d", ErrUpstream, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrUpstream, e.Err)
	}
	return ErrUpstream.Error()
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
