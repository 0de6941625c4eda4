package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/stack"
)

func TestForKnownRuntimes(t *testing.T) {
	for _, id := range []stack.RuntimeId{
		stack.RuntimeJVM, stack.RuntimeNode, stack.RuntimePython, stack.RuntimeRuby,
		stack.RuntimePHP, stack.RuntimeDotnet, stack.RuntimeBEAM, stack.RuntimeNative,
		stack.RuntimeLLMFallback,
	} {
		rt, ok := For(id)
		require.True(t, ok, "expected registered runtime for %s", id)
		assert.Equal(t, id, rt.ID())
	}
}

func TestNodePortScan(t *testing.T) {
	rt, _ := For(stack.RuntimeNode)
	files := []SourceFile{{Path: "index.js", Content: []byte("app.listen(4000)")}}
	cfg, ok := TryDeterministicConfig(rt, files, nil, nil)
	require.True(t, ok)
	assert.EqualValues(t, 4000, cfg.Port)
}

func TestNodeDefaultPortWhenNoMatch(t *testing.T) {
	rt, _ := For(stack.RuntimeNode)
	cfg, ok := TryDeterministicConfig(rt, nil, nil, nil)
	require.True(t, ok)
	assert.EqualValues(t, 8080, cfg.Port)
}

func TestLLMFallbackDeclines(t *testing.T) {
	rt, _ := For(stack.RuntimeLLMFallback)
	_, ok := TryDeterministicConfig(rt, nil, nil, nil)
	assert.False(t, ok)
}

func TestPHPAlwaysOnExtensions(t *testing.T) {
	rt, _ := For(stack.RuntimePHP)
	pkgs := rt.RequiredPackages(stack.FrameworkId{}, nil)
	assert.Contains(t, pkgs, "ctype")
	assert.Contains(t, pkgs, "mbstring")
	assert.NotContains(t, pkgs, "redis")
}

func TestPHPConditionalRedis(t *testing.T) {
	rt, _ := For(stack.RuntimePHP)
	pkgs := rt.RequiredPackages(stack.FrameworkId{}, []string{"predis/predis"})
	assert.Contains(t, pkgs, "redis")
}
