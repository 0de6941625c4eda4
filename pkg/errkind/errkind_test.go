package errkind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindUsage, 2},
		{KindDetectionFailed, 3},
		{KindLLMLowConfidence, 3},
		{KindValidation, 4},
		{KindConnection, 5},
		{KindBuild, 6},
		{KindTransport, 6},
	}
	for _, c := range cases {
		err := New(c.kind, "some-stage", errors.New("boom"))
		assert.Equal(t, c.want, ExitCode(err))
	}
}

func TestExitCodeNilIsZero(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
}

func TestExitCodeUnknownErrorIsOne(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
}

func TestStageErrorIsSentinel(t *testing.T) {
	err := New(KindValidation, "assemble", errors.New("unknown wolfi package"))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestStageErrorAsRoundTrips(t *testing.T) {
	err := New(KindConnection, "discover", errors.New("no endpoint"))
	var se *StageError
	require := assert.New(t)
	require.True(errors.As(err, &se))
	require.Equal(KindConnection, se.Kind)
}
