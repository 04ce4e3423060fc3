package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	nethttp "net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/album-downloader/internal/http"
	"github.com/handiism/album-downloader/internal/model"
)

// Writer downloads a single task. Implementations must always return an
// Outcome; they never panic on network or filesystem errors.
type Writer interface {
	Write(ctx context.Context, task model.Task) Outcome
}

// Opener issues a GET request and hands back the unread response.
type Opener interface {
	Open(ctx context.Context, url string) (*nethttp.Response, error)
}

// ProgressFunc receives byte counts while a response body is copied.
// total is -1 when the server did not send Content-Length.
type ProgressFunc func(task model.Task, written, total int64)

// FileWriter creates the destination file exclusively and streams the
// response body into it.
//
// A file created by Write is removed again unless the outcome is
// KindDownloaded, and the file handle is closed on every path.
type FileWriter struct {
	client     Opener
	logger     zerolog.Logger
	timeout    time.Duration
	onProgress ProgressFunc
}

// WriterOption configures a FileWriter.
type WriterOption func(*FileWriter)

// WithTimeout bounds each Write, request and body copy included.
// Zero disables the deadline.
func WithTimeout(d time.Duration) WriterOption {
	return func(w *FileWriter) {
		w.timeout = d
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) WriterOption {
	return func(w *FileWriter) {
		w.onProgress = fn
	}
}

// NewFileWriter creates a FileWriter that fetches through client.
func NewFileWriter(client Opener, logger zerolog.Logger, opts ...WriterOption) *FileWriter {
	w := &FileWriter{
		client: client,
		logger: logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write downloads task.SourceURL into task.Path.
func (w *FileWriter) Write(ctx context.Context, task model.Task) Outcome {
	logger := w.logger.With().Str("url", task.SourceURL).Str("path", task.Path).Logger()

	f, err := os.OpenFile(task.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			logger.Info().Msg("File exists. Skipping")
			return Outcome{Task: task, Kind: KindSkippedExisting}
		}

		logger.Error().Err(err).Msg("Failed to create destination file")
		return Outcome{Task: task, Kind: KindFatal, Err: fmt.Errorf("create destination file: %w", err)}
	}

	out := w.transfer(ctx, logger, f, task)

	if closeErr := f.Close(); closeErr != nil && out.Kind == KindDownloaded {
		logger.Error().Err(closeErr).Msg("Failed to close destination file")
		out = Outcome{Task: task, Kind: KindFatal, Err: fmt.Errorf("close destination file: %w", closeErr)}
	}

	if out.Kind != KindDownloaded {
		if removeErr := os.Remove(task.Path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			logger.Error().Err(removeErr).Msg("Failed to remove incomplete file")
			out = Outcome{
				Task:       task,
				Kind:       KindFatal,
				StatusCode: out.StatusCode,
				Err:        errors.Join(out.Err, fmt.Errorf("remove incomplete file: %w", removeErr)),
			}
		}
	}

	return out
}

func (w *FileWriter) transfer(ctx context.Context, logger zerolog.Logger, f *os.File, task model.Task) (out Outcome) {
	out.Task = task

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	resp, err := w.client.Open(ctx, task.SourceURL)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			logger.Warn().Str("host", dnsErr.Name).Msg("Host not found. Skipping")
			out.Kind, out.Err = KindSkippedNotFound, err
			return out
		}

		logger.Error().Err(err).Msg("Failed to send download request")
		out.Kind, out.Err = KindFatal, fmt.Errorf("send download request: %w", err)
		return out
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	out.StatusCode = resp.StatusCode
	if !http.IsSuccess(resp.StatusCode) {
		logger.
			Warn().
			Int("status_code", resp.StatusCode).
			Msg("Server responded with an unsuccessful status. The file cannot be downloaded")
		out.Kind = KindSkippedHTTPError
		return out
	}

	logger.Info().Msg("Start downloading")

	var dst io.Writer = f
	if w.onProgress != nil {
		dst = &http.ProgressWriter{
			Writer: f,
			Total:  resp.ContentLength,
			OnUpdate: func(written, total int64) {
				w.onProgress(task, written, total)
			},
		}
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		logger.Error().Err(err).Int64("written", n).Msg("Failed to write response body")
		out.Kind, out.Err = KindFatal, fmt.Errorf("write response body: %w", err)
		return out
	}

	logger.Info().Int64("bytes", n).Msg("Finished")
	out.Kind, out.Bytes = KindDownloaded, n

	return out
}
