package log

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// maxFrames bounds the frames attached to one event.
const maxFrames = 16

// stackHook adds a "stack" array of caller frames to error level events.
// Frames inside zerolog and this package are left out.
type stackHook struct{}

func (stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level < zerolog.ErrorLevel {
		return
	}

	var pcs [maxFrames + 8]uintptr
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs[:])])

	arr := zerolog.Arr()
	for n := 0; n < maxFrames; {
		frame, more := frames.Next()
		if frame.Function != "" && !internalFrame(frame.Function) {
			arr.Dict(zerolog.Dict().
				Str("func", frame.Function).
				Str("file", frame.File).
				Int("line", frame.Line),
			)
			n++
		}
		if !more {
			break
		}
	}
	e.Array("stack", arr)
}

func internalFrame(function string) bool {
	return strings.HasPrefix(function, "github.com/rs/zerolog.") ||
		strings.HasPrefix(function, "github.com/handiism/album-downloader/internal/log.stackHook")
}
