package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp Response
	err  error
}

func (f fakeClient) Classify(context.Context, Request) (Response, error) { return f.resp, f.err }

func TestNewStaticClientAlwaysReturnsErrNotConsulted(t *testing.T) {
	c := NewStaticClient()
	_, err := c.Classify(context.Background(), Request{Kind: KindLanguage})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConsulted))
}

func TestForModeStaticIgnoresSuppliedClient(t *testing.T) {
	real := fakeClient{resp: Response{Name: "custom-lang", Confidence: 0.9}}
	c := ForMode(ModeStatic, real)

	_, err := c.Classify(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConsulted)
}

func TestForModeFullAndLLMUseSuppliedClient(t *testing.T) {
	real := fakeClient{resp: Response{Name: "custom-lang", Confidence: 0.9}}

	for _, mode := range []DetectionMode{ModeFull, ModeLLM} {
		c := ForMode(mode, real)
		resp, err := c.Classify(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "custom-lang", resp.Name)
	}
}

func TestForModeFallsBackToStaticWhenClientIsNil(t *testing.T) {
	c := ForMode(ModeFull, nil)
	_, err := c.Classify(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConsulted)
}

func TestMinConfidenceRejectsLowConfidenceResponses(t *testing.T) {
	low := Response{Name: "guess", Confidence: 0.2}
	assert.Less(t, low.Confidence, MinConfidence)
}
