package errors

/*
* Error codes convey why an avatar operation produced no result. Not every code
* is surfaced to callers as an error: an invalid hash or a remote that has no
* avatar is a soft miss and is returned as "no record". The codes are still
* defined so that logs and the HTTP API can name the reason.
 */

import (
	"errors"
	"fmt"
)

const (
	// InvalidHash is a caller error, the input never reaches the network.
	InvalidHash ErrCode = 1
	// NotFound means the remote answered, but not with HTTP 200.
	NotFound ErrCode = 2
	// NetworkFailure covers connection, timeout and read errors.
	NetworkFailure ErrCode = 3
	// DigestUnavailable means the hash algorithm is not registered. Never
	// expected in a correct build.
	DigestUnavailable ErrCode = 4
	// InvalidURL is returned when a base URL is empty or malformed.
	InvalidURL ErrCode = 5
	// SnapshotFailure is returned by the persistence collaborators.
	SnapshotFailure ErrCode = 6
	// Cancelled is returned when a job or call was cancelled before it ran.
	Cancelled ErrCode = 7
)

// ErrCode identifies the class of an AvatarError
type ErrCode uint8

var codeNames = map[ErrCode]string{
	InvalidHash:       "invalid hash",
	NotFound:          "not found",
	NetworkFailure:    "network failure",
	DigestUnavailable: "digest unavailable",
	InvalidURL:        "invalid url",
	SnapshotFailure:   "snapshot failure",
	Cancelled:         "cancelled",
}

func (c ErrCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", uint8(c))
}

// AvatarError implements the Error interface.
type AvatarError struct {
	Function     string  `json:"-"`
	ErrorCode    ErrCode `json:"errorCode"`
	ErrorMessage string  `json:"errorDetail"`
	Err          error   `json:"-"`
}

func (e *AvatarError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Function, e.ErrorMessage, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Function, e.ErrorMessage)
}

// Unwrap returns the underlying cause, if any
func (e *AvatarError) Unwrap() error {
	return e.Err
}

// New returns an AvatarError without a cause
func New(function string, errCode ErrCode, errMessage string) error {
	return &AvatarError{
		Function:     function,
		ErrorCode:    errCode,
		ErrorMessage: errMessage,
	}
}

// Wrap returns an AvatarError recording err as its cause
func Wrap(function string, errCode ErrCode, err error) error {
	return &AvatarError{
		Function:     function,
		ErrorCode:    errCode,
		ErrorMessage: errCode.String(),
		Err:          err,
	}
}

// HasCode reports whether any AvatarError in err's chain carries the code
func HasCode(err error, errCode ErrCode) bool {
	var ae *AvatarError
	for errors.As(err, &ae) {
		if ae.ErrorCode == errCode {
			return true
		}
		err = ae.Err
	}
	return false
}
