package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// FlushingWriter serializes writes to a destination and flushes it after every write.
// It satisfies zapcore.WriteSyncer.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination; wrapping an existing FlushingWriter returns it unchanged.
func NewFlushingWriter(destination io.Writer) *FlushingWriter {
	if existing, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return existing
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when the destination buffers output.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return len(data), nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedDestination, buffered := writer.destination.(flusher); buffered {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}
	return bytesWritten, nil
}

// Sync flushes buffered output and syncs destinations that support it, such as files.
func (writer *FlushingWriter) Sync() error {
	if writer == nil || writer.destination == nil {
		return nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if bufferedDestination, buffered := writer.destination.(flusher); buffered {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return flushError
		}
	}
	if syncedDestination, syncable := writer.destination.(syncer); syncable {
		return syncedDestination.Sync()
	}
	return nil
}
