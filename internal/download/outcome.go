package download

import (
	"errors"
	"fmt"

	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/model"
)

var (
	// ErrInvalidConcurrency is returned when the concurrency width is not
	// a positive integer.
	ErrInvalidConcurrency = config.ErrInvalidConcurrency

	// ErrDuplicateDestination is returned before any download starts when
	// two tasks of one run share a destination path.
	ErrDuplicateDestination = errors.New("duplicate destination path")

	// ErrNotInitialized is returned by Manager.Download before Initialize.
	ErrNotInitialized = errors.New("manager is not initialized")
)

// Kind classifies the terminal result of one download task.
type Kind int

const (
	// KindDownloaded means the file was created and fully written.
	KindDownloaded Kind = iota

	// KindSkippedExisting means a file was already present at the
	// destination. No request was sent.
	KindSkippedExisting

	// KindSkippedNotFound means the source host name could not be resolved.
	KindSkippedNotFound

	// KindSkippedHTTPError means the server answered with a non-2xx status.
	KindSkippedHTTPError

	// KindFatal is any other transfer or filesystem failure. It aborts
	// the waves that follow.
	KindFatal
)

var kindNames = [...]string{
	KindDownloaded:       "downloaded",
	KindSkippedExisting:  "skipped_existing",
	KindSkippedNotFound:  "skipped_not_found",
	KindSkippedHTTPError: "skipped_http_error",
	KindFatal:            "fatal",
}

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{KindDownloaded, KindSkippedExisting, KindSkippedNotFound, KindSkippedHTTPError, KindFatal}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Outcome is the result of one FileWriter invocation.
type Outcome struct {
	Task model.Task
	Kind Kind

	// StatusCode is the HTTP status of the response, when one was received.
	StatusCode int

	// Bytes is the number of bytes written for KindDownloaded.
	Bytes int64

	// Err carries the cause for KindFatal and, for diagnostics, the
	// resolver error for KindSkippedNotFound.
	Err error
}

// Skipped reports whether the task was skipped without failing the run.
func (o Outcome) Skipped() bool {
	switch o.Kind {
	case KindSkippedExisting, KindSkippedNotFound, KindSkippedHTTPError:
		return true
	default:
		return false
	}
}

// FatalError reports the task whose fatal outcome aborted a run.
type FatalError struct {
	// Index is the position of the task in the run's task list.
	Index int
	Task  model.Task
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Index, e.Task.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
