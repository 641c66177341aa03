package localstore

import "fmt"

// StorageError wraps a local persistence failure. There is no
// fallback beneath local storage, so callers treat it as fatal to the
// operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("localstore: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FormatError reports a malformed import payload. Collections that
// parsed before the failure are not rolled back.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("localstore: invalid import payload: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
