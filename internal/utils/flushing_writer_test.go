package utils_test

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cmdrun/internal/utils"
)

type recordingSyncDestination struct {
	bytes.Buffer
	syncCalls int
	syncError error
}

func (destination *recordingSyncDestination) Sync() error {
	destination.syncCalls++
	return destination.syncError
}

func TestFlushingWriterFlushesBufferedDestinations(testInstance *testing.T) {
	var underlying bytes.Buffer
	bufferedDestination := bufio.NewWriterSize(&underlying, 4096)
	writer := utils.NewFlushingWriter(bufferedDestination)

	bytesWritten, writeError := writer.Write([]byte("Running ls\n"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len("Running ls\n"), bytesWritten)
	require.Equal(testInstance, "Running ls\n", underlying.String())
}

func TestFlushingWriterSyncDelegates(testInstance *testing.T) {
	testCases := []struct {
		name          string
		syncError     error
		expectedError error
	}{
		{name: "success"},
		{name: "failure", syncError: errors.New("sync failed"), expectedError: errors.New("sync failed")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			destination := &recordingSyncDestination{syncError: testCase.syncError}
			writer := utils.NewFlushingWriter(destination)

			syncError := writer.Sync()

			require.Equal(testInstance, 1, destination.syncCalls)
			require.Equal(testInstance, testCase.expectedError, syncError)
		})
	}
}

func TestNewFlushingWriterDoesNotDoubleWrap(testInstance *testing.T) {
	writer := utils.NewFlushingWriter(&bytes.Buffer{})

	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
}

func TestFlushingWriterWithoutDestinationDiscards(testInstance *testing.T) {
	writer := utils.NewFlushingWriter(nil)

	bytesWritten, writeError := writer.Write([]byte("ignored"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len("ignored"), bytesWritten)
	require.NoError(testInstance, writer.Sync())
}
