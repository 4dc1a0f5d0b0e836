package ui

import (
	"io"
	"sync"

	"github.com/temirov/cmdrun/internal/execshell"
)

// StreamEcho mirrors streamed output chunks onto a pair of writers as they arrive.
type StreamEcho struct {
	mutex                sync.Mutex
	standardOutputWriter io.Writer
	standardErrorWriter  io.Writer
}

// NewStreamEcho constructs a StreamEcho; a nil writer silences its stream.
func NewStreamEcho(standardOutputWriter io.Writer, standardErrorWriter io.Writer) *StreamEcho {
	if standardOutputWriter == nil {
		standardOutputWriter = io.Discard
	}
	if standardErrorWriter == nil {
		standardErrorWriter = io.Discard
	}
	return &StreamEcho{standardOutputWriter: standardOutputWriter, standardErrorWriter: standardErrorWriter}
}

// OutputReceived implements execshell.OutputObserver.
func (echo *StreamEcho) OutputReceived(stream execshell.OutputStream, chunk string) {
	echo.mutex.Lock()
	defer echo.mutex.Unlock()

	targetWriter := echo.standardOutputWriter
	if stream == execshell.OutputStreamStandardError {
		targetWriter = echo.standardErrorWriter
	}
	_, _ = io.WriteString(targetWriter, chunk)
}
