package reporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/ir/irtest"
	"github.com/abigraph/abidiff/internal/pairing"
	"github.com/abigraph/abidiff/internal/propagate"
	"github.com/abigraph/abidiff/internal/redundancy"
)

func buildCorpora(env *ir.Environment) (*ir.Corpus, *ir.Corpus) {
	intType := irtest.Int32(env)
	voidFn := ir.NewFunctionType(env, "int ()", intType)

	removedFn := ir.NewFunctionDecl(env, "removed_fn", voidFn, irtest.Sym("removed_fn"))
	addedFn := ir.NewFunctionDecl(env, "added_fn", voidFn, irtest.Sym("added_fn"))

	keptOldType := ir.NewFunctionType(env, "int (int)", intType)
	keptNewType := ir.NewFunctionType(env, "int (int, int)", intType,
		ir.NewFunctionParameter(env, "extra", intType, 1, false))
	keptOld := ir.NewFunctionDecl(env, "kept_fn", keptOldType, irtest.Sym("kept_fn"))
	keptNew := ir.NewFunctionDecl(env, "kept_fn", keptNewType, irtest.Sym("kept_fn"))

	first := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	first.Functions = []*ir.FunctionDecl{removedFn, keptOld}

	second := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	second.Functions = []*ir.FunctionDecl{addedFn, keptNew}

	return first, second
}

func TestReportSummarizesFunctionChanges(t *testing.T) {
	env := irtest.Env("t")
	first, second := buildCorpora(env)

	ctx := core.NewContext(first, second)
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)
	redundancy.Mark(ctx, root)

	var buf bytes.Buffer
	require.NoError(t, Report(ctx, &buf, root))

	out := buf.String()
	assert.Contains(t, out, "Functions changes summary:")
	assert.Contains(t, out, "1 Removed")
	assert.Contains(t, out, "1 Added")
}

func TestReportIsIdempotentAcrossCalls(t *testing.T) {
	env := irtest.Env("t")
	first, second := buildCorpora(env)
	ctx := core.NewContext(first, second)
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)
	redundancy.Mark(ctx, root)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, Report(ctx, &buf1, root))
	require.NoError(t, Report(ctx, &buf2, root))
	assert.Equal(t, buf1.String(), buf2.String())
}

func TestWriteYAMLSummaryProducesParsableDocument(t *testing.T) {
	env := irtest.Env("t")
	first, second := buildCorpora(env)
	ctx := core.NewContext(first, second)
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)

	var buf bytes.Buffer
	require.NoError(t, WriteYAMLSummary(ctx, &buf, root))
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, buf.String(), "stats:")
}

func TestWriteHTMLProducesDocument(t *testing.T) {
	env := irtest.Env("t")
	first, second := buildCorpora(env)
	ctx := core.NewContext(first, second)
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(ctx, &buf, root))
	assert.Contains(t, buf.String(), "<html>")
}
