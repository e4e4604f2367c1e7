package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/ir/irtest"
	"github.com/abigraph/abidiff/internal/pairing"
	"github.com/abigraph/abidiff/internal/propagate"
	"github.com/abigraph/abidiff/internal/redundancy"
	"github.com/abigraph/abidiff/internal/suppress"
)

// runReport builds a corpus diff over (first, second), runs the full
// propagate/suppress/redundancy pipeline cmd/abidiff's compare command
// runs, and returns the rendered text report.
func runReport(t *testing.T, ctx *core.Context, first, second *ir.Corpus) string {
	t.Helper()
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)
	if len(ctx.Suppressions) > 0 {
		suppress.Apply(ctx, root)
	}
	redundancy.Mark(ctx, root)

	var buf bytes.Buffer
	require.NoError(t, Report(ctx, &buf, root))
	return buf.String()
}

func oneVarCorpus(env *ir.Environment, soname string, typ ir.Subject) *ir.Corpus {
	c := ir.NewCorpus(env, soname, "x86_64")
	c.Variables = []*ir.Variable{ir.NewVariable(env, "v", typ, irtest.Sym("v"))}
	return c
}

func TestReportDataMemberOffsetChange(t *testing.T) {
	env := irtest.Env("t")
	intType := irtest.Int32(env)

	oldClass := ir.NewClass(env, "Rec", false, 64, 32)
	oldClass.DataMembers = []*ir.DataMember{{Name: "x", Type: intType, Offset: 0}}

	newClass := ir.NewClass(env, "Rec", false, 64, 32)
	newClass.DataMembers = []*ir.DataMember{{Name: "x", Type: intType, Offset: 32}}

	first := oneVarCorpus(env, "libfoo.so.1", oldClass)
	second := oneVarCorpus(env, "libfoo.so.1", newClass)
	ctx := core.NewContext(first, second)

	out := runReport(t, ctx, first, second)
	assert.Contains(t, out, "'x' offset changed from 0 to 32 (in bits)")
}

func TestReportEnumeratorValueChange(t *testing.T) {
	env := irtest.Env("t")
	intType := irtest.Int32(env)

	oldEnum := ir.NewEnum(env, "Color", intType, 32, 32,
		ir.EnumValue{Name: "Red", Value: 0}, ir.EnumValue{Name: "Blue", Value: 1})
	newEnum := ir.NewEnum(env, "Color", intType, 32, 32,
		ir.EnumValue{Name: "Red", Value: 0}, ir.EnumValue{Name: "Blue", Value: 2})

	first := oneVarCorpus(env, "libfoo.so.1", oldEnum)
	second := oneVarCorpus(env, "libfoo.so.1", newEnum)
	ctx := core.NewContext(first, second)

	out := runReport(t, ctx, first, second)
	assert.Contains(t, out, "'Color::Blue' from value '1' to '2'")
}

func TestReportAnonymousToNamedEnumIsNameChange(t *testing.T) {
	env := irtest.Env("t")
	intType := irtest.Int32(env)

	anonEnum := ir.NewEnum(env, "", intType, 32, 32, ir.EnumValue{Name: "A", Value: 0})
	namedEnum := ir.NewEnum(env, "Flag", intType, 32, 32, ir.EnumValue{Name: "A", Value: 0})

	first := oneVarCorpus(env, "libfoo.so.1", anonEnum)
	second := oneVarCorpus(env, "libfoo.so.1", namedEnum)
	ctx := core.NewContext(first, second)

	out := runReport(t, ctx, first, second)
	assert.Contains(t, out, "name changed from '' to 'Flag'")
}

func TestReportVTableOffsetChange(t *testing.T) {
	env := irtest.Env("t")
	intType := irtest.Int32(env)
	fnType := ir.NewFunctionType(env, "void ()", intType)

	oldFn := ir.NewFunctionDecl(env, "Widget::draw", fnType, irtest.Sym("_ZN6Widget4drawEv"))
	oldFn.DeclaredVirtual = true
	oldFn.VTableOffset = 2

	newFn := ir.NewFunctionDecl(env, "Widget::draw", fnType, irtest.Sym("_ZN6Widget4drawEv"))
	newFn.DeclaredVirtual = true
	newFn.VTableOffset = 3

	first := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	first.Functions = []*ir.FunctionDecl{oldFn}
	second := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	second.Functions = []*ir.FunctionDecl{newFn}

	ctx := core.NewContext(first, second)
	root := pairing.CompareCorpora(ctx, first, second)
	propagate.Run(ctx, root)
	redundancy.Mark(ctx, root)

	var buf bytes.Buffer
	require.NoError(t, Report(ctx, &buf, root))
	assert.Contains(t, buf.String(), "vtable offset changed from 2 to 3")
	assert.True(t, VTableOffsetChangedAndVisible(ctx, root))
}

func TestReportBaseClassReordering(t *testing.T) {
	env := irtest.Env("t")
	baseA := ir.NewClass(env, "BaseA", false, 32, 32)
	baseB := ir.NewClass(env, "BaseB", false, 32, 32)

	oldClass := ir.NewClass(env, "Derived", false, 64, 32)
	oldClass.Bases = []*ir.BaseSpecifier{
		{ClassType: baseA, Offset: 0, Access: ir.Public},
		{ClassType: baseB, Offset: 32, Access: ir.Public},
	}
	newClass := ir.NewClass(env, "Derived", false, 64, 32)
	newClass.Bases = []*ir.BaseSpecifier{
		{ClassType: baseB, Offset: 0, Access: ir.Public},
		{ClassType: baseA, Offset: 32, Access: ir.Public},
	}

	first := oneVarCorpus(env, "libfoo.so.1", oldClass)
	second := oneVarCorpus(env, "libfoo.so.1", newClass)
	ctx := core.NewContext(first, second)

	out := runReport(t, ctx, first, second)
	assert.Contains(t, out, "base class deletion")
	assert.Contains(t, out, "base class insertion")
	assert.Contains(t, out, "base class change")
}

func TestReportRedundantPointerToChangedTypeIsHiddenWhenRedundantDisallowed(t *testing.T) {
	env := irtest.Env("t")

	oldWidget := ir.NewClass(env, "Widget", false, 64, 64)
	newWidget := ir.NewClass(env, "Widget", false, 128, 64)

	oldPtr := ir.NewPointerType(env, "Widget*", oldWidget, 64, 64)
	newPtr := ir.NewPointerType(env, "Widget*", newWidget, 64, 64)

	first := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	first.Variables = []*ir.Variable{
		ir.NewVariable(env, "v1", oldPtr, irtest.Sym("v1")),
		ir.NewVariable(env, "v2", oldPtr, irtest.Sym("v2")),
	}
	second := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	second.Variables = []*ir.Variable{
		ir.NewVariable(env, "v1", newPtr, irtest.Sym("v1")),
		ir.NewVariable(env, "v2", newPtr, irtest.Sym("v2")),
	}

	ctx := core.NewContext(first, second)
	out := runReport(t, ctx, first, second)
	// v1 and v2 share the exact same pointer-to-Widget subject pair, so the
	// canonicalization cache (internal/core.Context.Intern) hands both
	// variables the same *diff.PointerDiff node. Redundancy marking flags
	// that shared node once; by default (ShowRedundantChanges true) its
	// detail still prints, but only on its first encounter — the second
	// reference hits the "already reported" short-circuit instead.
	assert.Equal(t, 1, strings.Count(out, "type size changed from 64 to 128 bits"))
	assert.Contains(t, out, "details were reported earlier")

	ctx2 := core.NewContext(first, second)
	ctx2.Display.ShowRedundantChanges = false
	out2 := runReport(t, ctx2, first, second)
	// The shared node's REDUNDANT bit is set before Report runs, so hiding
	// redundant changes hides the detail from every reference to it, not
	// just the repeat encounter.
	assert.Equal(t, 0, strings.Count(out2, "type size changed from 64 to 128 bits"))
	assert.NotContains(t, out2, "details were reported earlier")
}

func TestReportSuppressedHarmlessRenameIsHidden(t *testing.T) {
	env := irtest.Env("t")
	intType := irtest.Int32(env)

	oldFn := ir.NewFunctionDecl(env, "num_entries", ir.NewFunctionType(env, "int ()", intType), irtest.Sym("num_entries"))

	// Same signature and symbol, only the declared name differs by casing —
	// a camelCase/snake_case-only rename (suppress.IsHarmlessRename).
	renamedNewFn := ir.NewFunctionDecl(env, "numEntries", ir.NewFunctionType(env, "int ()", intType), irtest.Sym("num_entries"))

	first := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	first.Functions = []*ir.FunctionDecl{oldFn}
	second := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	second.Functions = []*ir.FunctionDecl{renamedNewFn}

	ctx := core.NewContext(first, second)
	ctx.Suppressions = []core.SuppressionRule{
		&suppress.FunctionRule{NameRE: nil, NameLiteral: "num_entries"},
	}

	out := runReport(t, ctx, first, second)
	assert.NotContains(t, out, "numEntries")
	assert.NotContains(t, out, "name changed from")
}
