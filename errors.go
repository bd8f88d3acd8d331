// errors.go - descriptive errors for the scan engine
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package spaceview

import (
	"errors"
	"fmt"
)

// errAny returns true if the target error 'err' matches
// any in the list 'errs'; and returns false otherwise
func errAny(err error, errs ...error) bool {
	for _, e := range errs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// ErrCancelled is returned (never wrapped further) when a running
// operation observes the cancellation flag. Callers translate it to
// a null result rather than surfacing it as a command error.
var ErrCancelled = errors.New("cancelled")

// ErrBusy is returned when a command is rejected because a scan of
// the same class is already running.
var ErrBusy = errors.New("busy")

// ErrInvalidPath is returned when a command's path argument does not
// exist or is not a directory.
var ErrInvalidPath = errors.New("invalid path")

// ErrCacheMiss is returned by the cache store when no record exists
// for a path, or an existing record fails its version guard.
var ErrCacheMiss = errors.New("cache miss")

// ErrCacheTooLarge is returned when a serialized tree blob exceeds
// the cache store's size guard. The cache is left untouched.
var ErrCacheTooLarge = errors.New("cache record too large")

// ScanError wraps a failure in one phase of the scan pipeline.
type ScanError struct {
	Op   string
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan: %s %q: %s", e.Op, e.Path, e.Err.Error())
}

func (e *ScanError) Unwrap() error { return e.Err }

var _ error = &ScanError{}

// CacheError wraps a failure reading or writing the cache store.
type CacheError struct {
	Op              string
	Path            string
	Err             error
	TooLarge        bool
	VersionMismatch bool
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache: %s %q: %s", e.Op, e.Path, e.Err.Error())
}

func (e *CacheError) Unwrap() error { return e.Err }

var _ error = &CacheError{}

// WatcherError wraps a failure arming or servicing a filesystem
// watcher. It never aborts a scan in progress - only incremental
// refresh is disabled until the watcher is re-armed.
type WatcherError struct {
	Path string
	Err  error
}

func (e *WatcherError) Error() string {
	return fmt.Sprintf("watcher: %q: %s", e.Path, e.Err.Error())
}

func (e *WatcherError) Unwrap() error { return e.Err }

var _ error = &WatcherError{}
