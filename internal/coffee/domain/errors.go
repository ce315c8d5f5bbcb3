package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork classifies transport and payload failures of the search API.
	ErrNetwork = errors.New("coffee api unavailable")
	// ErrNotFound is returned when the API marks a detail record as missing.
	ErrNotFound = errors.New("coffee shop not found")
	// ErrShopNotListed is returned when a selection names a shop outside the current result.
	ErrShopNotListed = errors.New("shop is not part of the current result")
	// ErrSessionNotFound is returned by session stores for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidQuery is returned for malformed search parameters.
	ErrInvalidQuery = errors.New("invalid search query")
)

// NetworkError carries the failing operation and its cause.
// errors.Is(err, ErrNetwork) holds for every NetworkError.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is makes every NetworkError match ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
