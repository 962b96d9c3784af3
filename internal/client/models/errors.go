package models

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nutrisync/internal/common"
)

// ErrSerialization marks failures to decode or validate a queued payload.
var ErrSerialization = errors.New("serialization error")

// ErrMissingPayload is returned when an operation that needs a body has none.
var ErrMissingPayload = errors.New("payload required")

// SyncErrorKind classifies why processing a queue entry failed.
type SyncErrorKind string

const (
	SyncErrorNone          SyncErrorKind = ""
	SyncErrorNetwork       SyncErrorKind = "network"
	SyncErrorSerialization SyncErrorKind = "serialization"
	SyncErrorNotFound      SyncErrorKind = "not_found"
	SyncErrorUnknown       SyncErrorKind = "unknown"
)

// SyncError is the failure recorded on a queue entry.
type SyncError struct {
	Kind    SyncErrorKind
	Message string
}

func (e *SyncError) Error() string {
	return e.Message
}

// Classify wraps err into a SyncError with a kind derived from the sentinels
// it matches.
func Classify(err error) *SyncError {
	if err == nil {
		return nil
	}

	var se *SyncError
	if errors.As(err, &se) {
		return se
	}

	kind := SyncErrorUnknown
	switch {
	case errors.Is(err, common.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		kind = SyncErrorNetwork
	case errors.Is(err, common.ErrNotFound):
		kind = SyncErrorNotFound
	case errors.Is(err, ErrSerialization),
		errors.Is(err, ErrMissingPayload),
		errors.Is(err, common.ErrInvalidArgument):
		kind = SyncErrorSerialization
	}

	return &SyncError{Kind: kind, Message: err.Error()}
}
