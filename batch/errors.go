package batch

import "fmt"

// InvalidBatchError signals a batch-level input problem — an empty URL list
// or a negative concurrency — that fails the whole Run before any fetch is
// attempted, as opposed to a per-URL Item.Err.
type InvalidBatchError struct {
	Reason string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("batch: invalid input: %s", e.Reason)
}
