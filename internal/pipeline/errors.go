package pipeline

import "errors"

// Task-terminating errors: the orchestrator stops and reports these, it
// never attempts to recover within the run.
var (
	ErrUnknownRecipient = errors.New("pipeline: unknown or deactivated recipient")
	ErrPasswordMissing  = errors.New("pipeline: pdf is encrypted and no credential is on file")
	ErrBadPassword      = errors.New("pipeline: stored credential failed to decrypt the pdf")
	ErrUnsupportedBank  = errors.New("pipeline: no extractor matched this statement")
	ErrNoTransactions   = errors.New("pipeline: zero transactions extracted from a non-empty table set")
)

// TransientStorageError wraps a storage failure the caller should retry —
// a dropped connection or a momentary pool exhaustion, as opposed to a
// malformed row that upsertChunk already contains.
type TransientStorageError struct {
	Err error
}

func (e *TransientStorageError) Error() string { return "pipeline: transient storage error: " + e.Err.Error() }
func (e *TransientStorageError) Unwrap() error  { return e.Err }
