package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrResolution          = errors.New("player handle could not be resolved")
	ErrUpstream            = errors.New("steam api request failed")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrGuideNotFound       = errors.New("guide not found")
	ErrSearchNotConfigured = errors.New("guide search is not configured")
	ErrMissingAPIKey       = errors.New("steam api key is not configured")
	ErrFeatureDisabled     = errors.New("feature disabled")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInternalError       = errors.New("internal server error")
)

// ResolutionError reports a handle that could not be mapped to a Steam ID.
type ResolutionError struct {
	Handle string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolving handle %q: %v", e.Handle, e.Err)
	}
	return fmt.Sprintf("resolving handle %q: no match", e.Handle)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrResolution) match any ResolutionError.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// UpstreamError is a transport failure, unexpected status or undecodable
// body from a required Steam call.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
