package chatsync

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("claim conversation not found")
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrClosed          = errors.New("conversation is closed")
	ErrAlreadyOpen     = errors.New("conversation is already open")
	errRefreshInFlight = errors.New("refresh already in flight")
)

// SendFailedError is returned when the server rejects or never acknowledges
// a send. The optimistic entry has already been removed from the view.
type SendFailedError struct {
	ClaimID string
	Err     error
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("send to claim %s failed: %v", e.ClaimID, e.Err)
}

func (e *SendFailedError) Unwrap() error {
	return e.Err
}

// FetchFailedError is returned when a refresh cannot load the message list.
// The view keeps its last good contents.
type FetchFailedError struct {
	ClaimID string
	Err     error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch of claim %s failed: %v", e.ClaimID, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}
