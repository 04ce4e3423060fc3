package download_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/album-downloader/internal/download"
	"github.com/handiism/album-downloader/internal/http"
	"github.com/handiism/album-downloader/internal/model"
)

// fakeWriter records concurrency and ordering without touching the network.
type fakeWriter struct {
	delay func(task model.Task) time.Duration
	kinds map[string]download.Kind

	seq         atomic.Int64
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu     sync.Mutex
	starts map[string]int64
	ends   map[string]int64
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		kinds:  make(map[string]download.Kind),
		starts: make(map[string]int64),
		ends:   make(map[string]int64),
	}
}

func (w *fakeWriter) Write(_ context.Context, task model.Task) download.Outcome {
	n := w.inFlight.Add(1)
	for {
		m := w.maxInFlight.Load()
		if n <= m || w.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	w.mu.Lock()
	w.starts[task.Path] = w.seq.Add(1)
	w.mu.Unlock()

	if w.delay != nil {
		time.Sleep(w.delay(task))
	} else {
		time.Sleep(5 * time.Millisecond)
	}

	w.mu.Lock()
	w.ends[task.Path] = w.seq.Add(1)
	kind := w.kinds[task.Path]
	w.mu.Unlock()

	w.inFlight.Add(-1)

	out := download.Outcome{Task: task, Kind: kind}
	switch kind {
	case download.KindSkippedHTTPError:
		out.StatusCode = 404
	case download.KindFatal:
		out.Err = errors.New("permission denied")
	case download.KindDownloaded, download.KindSkippedExisting, download.KindSkippedNotFound:
	}
	return out
}

func (w *fakeWriter) started(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.starts[path]
	return ok
}

func makeTasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{
			SourceURL: fmt.Sprintf("https://example.com/%02d.mp3", i+1),
			Path:      fmt.Sprintf("/music/a/b/%02d - Track.mp3", i+1),
		}
	}
	return tasks
}

func newOrchestrator(t *testing.T, w download.Writer, width int, opts ...download.OrchestratorOption) *download.Orchestrator {
	t.Helper()

	o, err := download.NewOrchestrator(w, width, zerolog.Nop(), opts...)
	require.NoError(t, err)

	return o
}

func TestNewOrchestrator_InvalidWidth(t *testing.T) {
	t.Parallel()

	for _, width := range []int{0, -1, -10} {
		_, err := download.NewOrchestrator(newFakeWriter(), width, zerolog.Nop())
		require.ErrorIs(t, err, download.ErrInvalidConcurrency, "width %d", width)
	}
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	w := newFakeWriter()
	outcomes, err := newOrchestrator(t, w, 3).Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Zero(t, w.seq.Load())
}

// Seven tasks with width three run as waves of 3, 3 and 1.
func TestRun_Waves(t *testing.T) {
	t.Parallel()

	const width = 3
	tasks := makeTasks(7)
	w := newFakeWriter()

	var (
		mu    sync.Mutex
		waves [][]model.Task
	)
	o := newOrchestrator(t, w, width, download.OnWaveStart(func(wave int, batch []model.Task) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(waves), wave)
		waves = append(waves, batch)
	}))

	outcomes, err := o.Run(context.Background(), tasks)
	require.NoError(t, err)

	require.Len(t, waves, 3)
	assert.Len(t, waves[0], 3)
	assert.Len(t, waves[1], 3)
	assert.Len(t, waves[2], 1)

	require.Len(t, outcomes, 7)
	for i, out := range outcomes {
		assert.Equal(t, tasks[i], out.Task)
		assert.Equal(t, download.KindDownloaded, out.Kind)
		assert.Equal(t, tasks[i], waves[i/width][i%width], "task %d must belong to wave %d", i, i/width)
	}

	assert.LessOrEqual(t, w.maxInFlight.Load(), int32(width))
}

// Every task of wave k+1 starts after every task of wave k ended.
func TestRun_Barrier(t *testing.T) {
	t.Parallel()

	const width = 4
	tasks := makeTasks(10)
	w := newFakeWriter()
	w.delay = func(task model.Task) time.Duration {
		return time.Duration(len(task.Path)%3+1) * 3 * time.Millisecond
	}

	_, err := newOrchestrator(t, w, width).Run(context.Background(), tasks)
	require.NoError(t, err)

	for i := width; i < len(tasks); i++ {
		prevWave := i/width - 1
		for j := prevWave * width; j < (prevWave+1)*width; j++ {
			assert.Greater(t, w.starts[tasks[i].Path], w.ends[tasks[j].Path],
				"task %d started before task %d of the previous wave ended", i, j)
		}
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	for _, width := range []int{1, 2, 5, 20} {
		w := newFakeWriter()
		outcomes, err := newOrchestrator(t, w, width).Run(context.Background(), makeTasks(12))

		require.NoError(t, err)
		assert.Len(t, outcomes, 12)
		assert.LessOrEqual(t, w.maxInFlight.Load(), int32(width), "width %d", width)
	}
}

func TestRun_OrderPreserved(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(6)
	w := newFakeWriter()
	// Later tasks of a wave finish first.
	w.delay = func(task model.Task) time.Duration {
		for i, tk := range tasks {
			if tk == task {
				return time.Duration(len(tasks)-i) * 4 * time.Millisecond
			}
		}
		return 0
	}

	outcomes, err := newOrchestrator(t, w, 6).Run(context.Background(), tasks)
	require.NoError(t, err)

	for i := range tasks {
		assert.Equal(t, tasks[i], outcomes[i].Task)
	}
}

// A 404 on one task is skipped; every task is still attempted.
func TestRun_SkipDoesNotAbort(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(7)
	w := newFakeWriter()
	w.kinds[tasks[3].Path] = download.KindSkippedHTTPError

	outcomes, err := newOrchestrator(t, w, 3).Run(context.Background(), tasks)
	require.NoError(t, err)

	require.Len(t, outcomes, 7)
	assert.Equal(t, download.KindSkippedHTTPError, outcomes[3].Kind)
	assert.Equal(t, 404, outcomes[3].StatusCode)
	for i, out := range outcomes {
		if i != 3 {
			assert.Equal(t, download.KindDownloaded, out.Kind)
		}
	}
}

// A fatal outcome lets its wave finish and stops later waves.
func TestRun_FatalAbortsLaterWaves(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(7)
	w := newFakeWriter()
	w.kinds[tasks[4].Path] = download.KindFatal

	var settled atomic.Int32
	o := newOrchestrator(t, w, 3, download.OnOutcome(func(int, download.Outcome) {
		settled.Add(1)
	}))

	outcomes, err := o.Run(context.Background(), tasks)
	require.Error(t, err)

	var fatal *download.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 4, fatal.Index)
	assert.Equal(t, tasks[4], fatal.Task)
	assert.EqualError(t, errors.Unwrap(err), "permission denied")

	require.Len(t, outcomes, 6, "the fatal task's wave completes")
	assert.Equal(t, download.KindDownloaded, outcomes[3].Kind)
	assert.Equal(t, download.KindFatal, outcomes[4].Kind)
	assert.Equal(t, download.KindDownloaded, outcomes[5].Kind)
	assert.False(t, w.started(tasks[6].Path), "later waves never run")
	assert.Equal(t, int32(6), settled.Load())
}

func TestRun_DuplicateDestination(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(3)
	tasks[2].Path = tasks[0].Path + "/."
	w := newFakeWriter()

	outcomes, err := newOrchestrator(t, w, 2).Run(context.Background(), tasks)

	require.ErrorIs(t, err, download.ErrDuplicateDestination)
	assert.Empty(t, outcomes)
	assert.Zero(t, w.seq.Load(), "nothing may run when destinations collide")
}

func TestRun_CancelledBetweenWaves(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(6)
	w := newFakeWriter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := newOrchestrator(t, w, 2, download.OnOutcome(func(index int, _ download.Outcome) {
		if index == 0 {
			cancel()
		}
	}))

	outcomes, err := o.Run(ctx, tasks)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outcomes, 2, "the running wave settles before the run stops")
	assert.False(t, w.started(tasks[2].Path))
}

func TestRun_FileWriterScenarios(t *testing.T) {
	t.Parallel()

	paths := []string{"/01.mp3", "/02.mp3", "/03.mp3", "/04.mp3", "/05.mp3", "/06.mp3", "/07.mp3"}

	t.Run("all downloaded and rerun is idempotent", func(t *testing.T) {
		t.Parallel()

		srv := newTrackServer(t, nil, paths...)
		dir := t.TempDir()
		tasks := serverTasks(srv.URL, dir, paths)
		o := newOrchestrator(t, download.NewFileWriter(http.NewClient(), zerolog.Nop()), 3)

		outcomes, err := o.Run(context.Background(), tasks)
		require.NoError(t, err)
		for _, out := range outcomes {
			assert.Equal(t, download.KindDownloaded, out.Kind)
		}
		require.Equal(t, int32(7), srv.total.Load())

		before := statAll(t, tasks)

		outcomes, err = o.Run(context.Background(), tasks)
		require.NoError(t, err)
		for _, out := range outcomes {
			assert.Equal(t, download.KindSkippedExisting, out.Kind)
		}
		assert.Equal(t, int32(7), srv.total.Load(), "a rerun sends no requests")
		assert.Equal(t, before, statAll(t, tasks), "files are untouched by a rerun")
	})

	t.Run("existing file is skipped without a request", func(t *testing.T) {
		t.Parallel()

		srv := newTrackServer(t, nil, paths...)
		dir := t.TempDir()
		tasks := serverTasks(srv.URL, dir, paths)
		require.NoError(t, os.WriteFile(tasks[1].Path, []byte("mine"), 0o644))

		outcomes, err := newOrchestrator(t, download.NewFileWriter(http.NewClient(), zerolog.Nop()), 3).
			Run(context.Background(), tasks)
		require.NoError(t, err)

		assert.Equal(t, download.KindSkippedExisting, outcomes[1].Kind)
		assert.Zero(t, srv.hitsFor(paths[1]))
		data, err := os.ReadFile(tasks[1].Path)
		require.NoError(t, err)
		assert.Equal(t, "mine", string(data))
	})

	t.Run("fatal task leaves no partial artifacts", func(t *testing.T) {
		t.Parallel()

		srv := newTrackServer(t, map[string]int{paths[3]: 404}, paths...)
		dir := t.TempDir()
		tasks := serverTasks(srv.URL, dir, paths)
		tasks[4].Path = filepath.Join(dir, "not-a-dir", "05.mp3")

		outcomes, err := newOrchestrator(t, download.NewFileWriter(http.NewClient(), zerolog.Nop()), 3).
			Run(context.Background(), tasks)

		var fatal *download.FatalError
		require.ErrorAs(t, err, &fatal)
		assert.Equal(t, 4, fatal.Index)
		require.Len(t, outcomes, 6)
		assert.Equal(t, download.KindSkippedHTTPError, outcomes[3].Kind)
		assert.Zero(t, srv.hitsFor(paths[6]), "later waves never run")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"01.mp3", "02.mp3", "03.mp3", "06.mp3"}, names)
	})
}

func serverTasks(baseURL, dir string, paths []string) []model.Task {
	tasks := make([]model.Task, len(paths))
	for i, p := range paths {
		tasks[i] = model.Task{SourceURL: baseURL + p, Path: filepath.Join(dir, filepath.Base(p))}
	}
	return tasks
}

func statAll(t *testing.T, tasks []model.Task) map[string]string {
	t.Helper()

	res := make(map[string]string, len(tasks))
	for _, task := range tasks {
		info, err := os.Stat(task.Path)
		require.NoError(t, err)
		data, err := os.ReadFile(task.Path)
		require.NoError(t, err)
		res[task.Path] = fmt.Sprintf("%s|%d|%s", info.ModTime(), info.Size(), data)
	}
	return res
}
