package logger

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingReader struct{ io.Reader }

func (closingReader) Close() error { return nil }

func TestLogAggregatorWriteReturnsInputLength(t *testing.T) {
	la := NewLogAggregator("plain")
	n, err := la.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, len("hello\n"), n)
}

func TestLogAggregatorCopyStopsOnErrorDetail(t *testing.T) {
	la := NewLogAggregator("plain")
	r := closingReader{strings.NewReader("step one\nerrorDetail: boom\nstep two\n")}

	n, err := la.Copy(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "errorDetail")
	assert.Equal(t, 1, n)
}

func TestLogAggregatorCopyReturnsLineCountOnSuccess(t *testing.T) {
	la := NewLogAggregator("plain")
	r := closingReader{strings.NewReader("one\ntwo\nthree\n")}

	n, err := la.Copy(r)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
