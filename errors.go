package gitpress

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by the store client and repository.
var (
	// ErrNotFound is returned when a requested post, asset, or repository
	// path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write's expected revision token no
	// longer matches the remote file. The caller must re-read and retry;
	// the repository never retries on its own.
	ErrConflict = errors.New("conflict")

	// ErrMalformed is returned when a document has no front matter block
	// or its front matter cannot be parsed.
	ErrMalformed = errors.New("malformed document")
)

// ValidationError reports required front matter fields that are empty or
// missing from a create/update request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// TransportError wraps a network or API failure from the remote store.
// It is surfaced unchanged so callers can distinguish remote outages from
// content problems; no retry happens at this layer.
type TransportError struct {
	Op         string // store operation, e.g. "ReadFile"
	Path       string // repository path the operation targeted
	StatusCode int    // HTTP status, 0 if the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github %s %s: status %d: %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
