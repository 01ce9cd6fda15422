package exam

import "errors"

var (
	// ErrInvalidArgument reports malformed planner input. Caller error, never
	// retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyGenerationResult reports a batch call that succeeded
	// transport-wise but yielded no parseable structured payload.
	ErrEmptyGenerationResult = errors.New("empty generation result")

	// ErrNoBatchesSucceeded reports that every planned batch failed; fatal
	// for the whole request.
	ErrNoBatchesSucceeded = errors.New("no batches succeeded")
)
