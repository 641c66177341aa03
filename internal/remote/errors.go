package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a remote operation failed.
type ErrorKind string

const (
	// KindUnauthenticated means the identity is missing or rejected.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindPermission means the identity may not touch the document.
	KindPermission ErrorKind = "permission_denied"
	// KindTransient covers network failures and timeouts.
	KindTransient ErrorKind = "transient"
)

// RemoteError means the remote store could not take the operation
// right now. Every kind is handled the same way by callers: keep the
// value local and retry on a later drain cycle.
type RemoteError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
