package usecase

import (
	"errors"
	"fmt"
)

// TransportError means the remote side could not be reached at all:
// connection refused, DNS failure, timeout or a broken body.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteRejectionError means the remote side answered with an unsuccessful status.
type RemoteRejectionError struct {
	Op         string
	URL        string
	StatusCode int
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("%s %s: rejected with status %d", e.Op, e.URL, e.StatusCode)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsRemoteRejection(err error) bool {
	var re *RemoteRejectionError
	return errors.As(err, &re)
}
