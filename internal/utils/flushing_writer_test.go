package utils_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitconsole/internal/utils"
)

type recordingFlushWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *recordingFlushWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *recordingFlushWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	underlyingWriter := &recordingFlushWriter{}
	flushingWriter := utils.NewFlushingWriter(underlyingWriter)

	_, writeError := flushingWriter.Write([]byte("> git status\r\n"))
	require.NoError(testInstance, writeError)
	_, writeStringError := io.WriteString(flushingWriter, "fatal: not a git repository\r\n")
	require.NoError(testInstance, writeStringError)

	require.Equal(testInstance, "> git status\r\nfatal: not a git repository\r\n", underlyingWriter.buffer.String())
	require.Equal(testInstance, 2, underlyingWriter.flushCount)
}

func TestNewFlushingWriterEdgeCases(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))

	flushingWriter := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
}
