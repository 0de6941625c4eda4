package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/scanner"
	"github.com/containifyci/universal-build/pkg/stack"
)

func TestUnfilledSlotPanics(t *testing.T) {
	ctx := New("/repo", stack.DefaultRegistry(), nil, llm.ModeStatic, nil)
	assert.Panics(t, func() { ctx.Scan() })
}

func TestSlotRoundTrip(t *testing.T) {
	ctx := New("/repo", stack.DefaultRegistry(), nil, llm.ModeStatic, nil)
	result := &scanner.Result{RootEntries: []string{"go.mod"}}
	ctx.SetScan(result)
	assert.Same(t, result, ctx.Scan())
}

func TestServiceContextInheritsScan(t *testing.T) {
	ctx := New("/repo", stack.DefaultRegistry(), nil, llm.ModeStatic, nil)
	scan := &scanner.Result{}
	ctx.SetScan(scan)

	app := stack.Application{Name: "api", Path: "."}
	sc := NewServiceContext(ctx, app, []string{"express"})
	assert.Equal(t, "api", sc.App.Name)
	assert.Same(t, scan, sc.Scan)

	sc.LogDecision("picked %s", "express")
	assert.Contains(t, ctx.DecisionLog(), "picked express")
}

func TestServiceAnalysesAccumulate(t *testing.T) {
	ctx := New("/repo", stack.DefaultRegistry(), nil, llm.ModeStatic, nil)
	ctx.AppendServiceAnalysis(ServiceAnalysis{Application: stack.Application{Name: "api"}})
	ctx.AppendServiceAnalysis(ServiceAnalysis{Application: stack.Application{Name: "web"}})
	assert.Len(t, ctx.ServiceAnalyses(), 2)
}
