package main

import (
	"context"
	"io"
	"path/filepath"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/handiism/album-downloader/internal/download"
	"github.com/handiism/album-downloader/internal/model"
)

// progressBars shows one bar per file being downloaded. Log lines written
// to it are printed above the bars.
type progressBars struct {
	p   *mpb.Progress
	out io.Writer

	mu   sync.Mutex
	bars map[string]*mpb.Bar
	once sync.Once
}

func newProgressBars(ctx context.Context, w io.Writer) *progressBars {
	return &progressBars{
		p:    mpb.NewWithContext(ctx, mpb.WithAutoRefresh(), mpb.WithOutput(w), mpb.WithWidth(40)),
		out:  w,
		bars: make(map[string]*mpb.Bar),
	}
}

// Write prints p above the bars, or straight to the output once the bars
// are gone.
func (b *progressBars) Write(p []byte) (int, error) {
	if n, err := b.p.Write(p); err == nil {
		return n, nil
	}
	return b.out.Write(p)
}

func (b *progressBars) update(task model.Task, written, total int64) {
	b.mu.Lock()
	bar, ok := b.bars[task.Path]
	if !ok {
		bar = b.p.AddBar(max(total, 0),
			mpb.PrependDecorators(
				decor.Name(filepath.Base(task.Path), decor.WC{C: decor.DindentRight | decor.DextraSpace}),
				decor.CountersKibiByte("% .1f / % .1f"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		b.bars[task.Path] = bar
	}
	b.mu.Unlock()

	bar.SetCurrent(written)
	if total <= 0 {
		bar.SetTotal(-1, false)
	}
}

func (b *progressBars) finish(_ int, out download.Outcome) {
	b.mu.Lock()
	bar, ok := b.bars[out.Task.Path]
	delete(b.bars, out.Task.Path)
	b.mu.Unlock()

	if !ok {
		return
	}

	if out.Kind == download.KindDownloaded {
		bar.SetTotal(-1, true)
		return
	}
	bar.Abort(false)
}

func (b *progressBars) shutdown() {
	b.once.Do(b.p.Shutdown)
}
