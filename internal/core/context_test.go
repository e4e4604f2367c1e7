package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir/irtest"
)

func TestInternReturnsSameCanonicalForSamePair(t *testing.T) {
	env := irtest.Env("t")
	a := irtest.Int32(env)
	b := irtest.Int32(env)

	ctx := NewContext(nil, nil)
	n1 := diff.NewDistinctDiff(a, b)
	n2 := diff.NewDistinctDiff(a, b)

	c1 := ctx.Intern(n1)
	c2 := ctx.Intern(n2)

	assert.Same(t, c1, c2)
	assert.Same(t, c1, n2.Canonical())
}

func TestStateForwardsThroughCanonical(t *testing.T) {
	env := irtest.Env("t")
	a := irtest.Int32(env)
	b := irtest.Int32(env)

	ctx := NewContext(nil, nil)
	n1 := diff.NewDistinctDiff(a, b)
	n2 := diff.NewDistinctDiff(a, b)
	ctx.Intern(n1)
	ctx.Intern(n2)

	assert.False(t, ctx.Visited(n2))
	ctx.SetVisited(n1, true)
	assert.True(t, ctx.Visited(n2))
}

func TestResetTraversalStatePreservesReportedOnce(t *testing.T) {
	env := irtest.Env("t")
	n := diff.NewDistinctDiff(irtest.Int32(env), irtest.Int32(env))

	ctx := NewContext(nil, nil)
	ctx.Intern(n)
	ctx.SetVisited(n, true)
	ctx.SetReportedOnce(n, true)

	ctx.ResetTraversalState()

	assert.False(t, ctx.Visited(n))
	assert.True(t, ctx.ReportedOnce(n))

	ctx.ClearReportedOnce()
	assert.False(t, ctx.ReportedOnce(n))
}

func TestAllowDisallowCategory(t *testing.T) {
	ctx := NewContext(nil, nil)
	ctx.DisallowCategory(ctx.AllowedCategories)
	assert.True(t, ctx.AllowedCategories.IsNoChange())
}

func TestFingerprintStableForSameKey(t *testing.T) {
	env := irtest.Env("t")
	a := irtest.Int32(env)
	b := irtest.Int32(env)
	k := diff.Key{First: a, Second: b}
	assert.Equal(t, Fingerprint(k), Fingerprint(k))
}
