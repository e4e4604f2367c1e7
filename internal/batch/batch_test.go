package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/ir/irtest"
)

func corpusPair(name string) (*ir.Corpus, *ir.Corpus) {
	env := irtest.Env(name)
	intType := irtest.Int32(env)
	fnType := ir.NewFunctionType(env, "int ()", intType)

	first := ir.NewCorpus(env, "lib"+name+".so.1", "x86_64")
	first.Functions = []*ir.FunctionDecl{ir.NewFunctionDecl(env, "f_"+name, fnType, irtest.Sym("f_"+name))}

	second := ir.NewCorpus(env, "lib"+name+".so.1", "x86_64")
	second.Functions = nil

	return first, second
}

func TestCompareRunsEveryPairConcurrently(t *testing.T) {
	var pairs []Pair
	for _, name := range []string{"a", "b", "c", "d"} {
		first, second := corpusPair(name)
		pairs = append(pairs, Pair{Label: name, First: first, Second: second})
	}

	results := Compare(pairs, 2)
	require.Len(t, results, len(pairs))
	for i, r := range results {
		assert.Equal(t, pairs[i].Label, r.Label)
		require.NoError(t, r.Err)
		assert.Equal(t, 1, r.Root.Stats.NetFuncRemoved())
	}
}

func TestCompareCoercesNonPositiveWorkerCount(t *testing.T) {
	first, second := corpusPair("solo")
	results := Compare([]Pair{{Label: "solo", First: first, Second: second}}, 0)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
}
