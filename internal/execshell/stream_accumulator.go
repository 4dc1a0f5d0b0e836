package execshell

import (
	"strings"

	"golang.org/x/sync/errgroup"
)

const chunkChannelCapacityConstant = 64

// streamAccumulator drains one bounded channel per output stream into its own builder.
type streamAccumulator struct {
	observer             OutputObserver
	standardOutputChunks chan []byte
	standardErrorChunks  chan []byte
	standardOutput       strings.Builder
	standardError        strings.Builder
	drainGroup           errgroup.Group
}

func newStreamAccumulator(observer OutputObserver) *streamAccumulator {
	return &streamAccumulator{
		observer:             observer,
		standardOutputChunks: make(chan []byte, chunkChannelCapacityConstant),
		standardErrorChunks:  make(chan []byte, chunkChannelCapacityConstant),
	}
}

func (accumulator *streamAccumulator) writer(stream OutputStream) chunkWriter {
	if stream == OutputStreamStandardError {
		return chunkWriter{chunks: accumulator.standardErrorChunks}
	}
	return chunkWriter{chunks: accumulator.standardOutputChunks}
}

func (accumulator *streamAccumulator) start() {
	accumulator.drainGroup.Go(func() error {
		accumulator.drain(OutputStreamStandardOutput, accumulator.standardOutputChunks, &accumulator.standardOutput)
		return nil
	})
	accumulator.drainGroup.Go(func() error {
		accumulator.drain(OutputStreamStandardError, accumulator.standardErrorChunks, &accumulator.standardError)
		return nil
	})
}

func (accumulator *streamAccumulator) drain(stream OutputStream, chunks <-chan []byte, builder *strings.Builder) {
	for chunk := range chunks {
		builder.Write(chunk)
		if accumulator.observer != nil {
			accumulator.observer.OutputReceived(stream, string(chunk))
		}
	}
}

// finish must only be called once no writer can be invoked again.
func (accumulator *streamAccumulator) finish() (string, string) {
	close(accumulator.standardOutputChunks)
	close(accumulator.standardErrorChunks)
	_ = accumulator.drainGroup.Wait()
	return accumulator.standardOutput.String(), accumulator.standardError.String()
}

// chunkWriter pushes a copy of each write onto a channel; callers may reuse the buffer.
type chunkWriter struct {
	chunks chan<- []byte
}

// Write implements io.Writer.
func (writer chunkWriter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	writer.chunks <- chunk
	return len(data), nil
}
