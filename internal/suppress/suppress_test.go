package suppress

import (
	"regexp"
	"strings"
	"testing"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/ir/irtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typeRuleText = `
[suppress_type]
name = Foo
type_kind = class
file_name_regexp = .*foo\.h$
soname_regexp = ^libfoo\.so
reach_kind = pointer
change_kind = subtype-change
`

func TestLoadParsesTypeRuleWithReachAndFileName(t *testing.T) {
	rules, errs := Load(strings.NewReader(typeRuleText), "test.ini")
	require.Empty(t, errs)
	require.Len(t, rules, 1)

	r, ok := rules[0].(*TypeRule)
	require.True(t, ok)
	assert.Equal(t, "Foo", r.NameLiteral)
	assert.Equal(t, "class", r.Kind)
	require.NotNil(t, r.FileNameRE)
	assert.True(t, r.FileNameRE.MatchString("src/foo.h"))
	require.NotNil(t, r.SONameRE)
	assert.True(t, r.SONameRE.MatchString("libfoo.so.1"))
	assert.Equal(t, ReachPointer, r.Reach)
	assert.Equal(t, SubTypeChange, r.Change)
}

func TestTypeRuleMatchesRespectsSOName(t *testing.T) {
	env := irtest.Env("t")
	first := ir.NewCorpus(env, "libfoo.so.1", "x86_64")
	second := ir.NewCorpus(env, "libfoo.so.2", "x86_64")
	ctx := core.NewContext(first, second)

	a := ir.NewClass(env, "Foo", false, 64, 64)
	b := ir.NewClass(env, "Foo", false, 128, 64)
	n := diff.NewClassDiff(a, b, false)

	matching := &TypeRule{NameLiteral: "Foo", SONameRE: regexp.MustCompile("^libfoo")}
	assert.True(t, matching.Matches(ctx, n))

	mismatching := &TypeRule{NameLiteral: "Foo", SONameRE: regexp.MustCompile("^libbar")}
	assert.False(t, mismatching.Matches(ctx, n))
}

func TestTypeRuleMatchesRespectsReach(t *testing.T) {
	env := irtest.Env("t")
	ctx := core.NewContext(nil, nil)

	a := ir.NewClass(env, "Foo", false, 64, 64)
	b := ir.NewClass(env, "Foo", false, 128, 64)
	classDiff := diff.NewClassDiff(a, b, false)

	directRule := &TypeRule{NameLiteral: "Foo", Reach: ReachDirect}
	pointerRule := &TypeRule{NameLiteral: "Foo", Reach: ReachPointer}

	// Reached directly: no enclosing pointer/reference diff.
	assert.True(t, directRule.Matches(ctx, classDiff))
	assert.False(t, pointerRule.Matches(ctx, classDiff))

	// Reached through a pointer: wrap classDiff as a PointerDiff's child.
	pa := ir.NewPointerType(env, "Foo*", a, 64, 64)
	pb := ir.NewPointerType(env, "Foo*", b, 64, 64)
	ptrDiff := diff.NewPointerDiff(pa, pb)
	ptrDiff.AddChild(classDiff)

	assert.True(t, pointerRule.Matches(ctx, classDiff))
	assert.False(t, directRule.Matches(ctx, classDiff))
}

func TestFunctionRuleMatchesChangeKind(t *testing.T) {
	env := irtest.Env("t")
	ctx := core.NewContext(nil, nil)

	fn := ir.NewFunctionDecl(env, "f", nil, irtest.Sym("f"))
	added := diff.NewFunctionDeclDiff(nil, fn)
	removed := diff.NewFunctionDeclDiff(fn, nil)
	changed := diff.NewFunctionDeclDiff(fn, ir.NewFunctionDecl(env, "f", nil, irtest.Sym("f")))

	addedOnly := &FunctionRule{NameLiteral: "f", Change: Added}
	assert.True(t, addedOnly.Matches(ctx, added))
	assert.False(t, addedOnly.Matches(ctx, removed))
	assert.False(t, addedOnly.Matches(ctx, changed))

	removedOnly := &FunctionRule{NameLiteral: "f", Change: Removed}
	assert.True(t, removedOnly.Matches(ctx, removed))
	assert.False(t, removedOnly.Matches(ctx, added))
}

func TestFunctionRuleMatchesAllowsSymbolAlias(t *testing.T) {
	env := irtest.Env("t")
	ctx := core.NewContext(nil, nil)

	sym := &ir.Symbol{Name: "f_v2", Aliases: []string{"f"}}
	fn := ir.NewFunctionDecl(env, "f", nil, sym)
	n := diff.NewFunctionDeclDiff(fn, nil)

	strict := &FunctionRule{SymbolName: "f"}
	assert.False(t, strict.Matches(ctx, n))

	lenient := &FunctionRule{SymbolName: "f", AllowAliases: true}
	assert.True(t, lenient.Matches(ctx, n))
}

func TestVariableRuleMatchesSymbolVersion(t *testing.T) {
	env := irtest.Env("t")
	ctx := core.NewContext(nil, nil)

	sym := &ir.Symbol{Name: "counter", Version: "LIBFOO_1.0"}
	v := ir.NewVariable(env, "counter", nil, sym)
	n := diff.NewVariableDiff(v, nil)

	matching := &VariableRule{NameLiteral: "counter", SymbolVersion: "LIBFOO_1.0"}
	assert.True(t, matching.Matches(ctx, n))

	mismatching := &VariableRule{NameLiteral: "counter", SymbolVersion: "LIBFOO_2.0"}
	assert.False(t, mismatching.Matches(ctx, n))
}

func TestApplyCascadesSuppressionFromChildToParent(t *testing.T) {
	env := irtest.Env("t")
	oldParam := ir.NewBasicType(env, "int", 32)
	newParam := ir.NewBasicType(env, "int", 64)
	typeDiff := diff.NewDistinctDiff(oldParam, newParam)
	typeDiff.SetLocalCategory(category.SizeOrOffset)

	fnA := ir.NewFunctionDecl(env, "f", nil, irtest.Sym("f"))
	fnB := ir.NewFunctionDecl(env, "f", nil, irtest.Sym("f"))
	fd := diff.NewFunctionDeclDiff(fnA, fnB)
	fd.AddChild(typeDiff)

	root := diff.NewCorpusDiff(nil, nil)
	root.ChangedFunctions = []diff.Node{fd}
	root.AddChild(fd)

	ctx := core.NewContext(nil, nil)
	ctx.Suppressions = []core.SuppressionRule{&TypeRule{NameLiteral: "int"}}

	Apply(ctx, root)

	assert.True(t, typeDiff.LocalCategory().Has(category.Suppressed))
	assert.True(t, fd.LocalCategory().Has(category.Suppressed))
}

func TestApplyFiltersSuppressedAddedFunctionsFromBucket(t *testing.T) {
	env := irtest.Env("t")
	kept := ir.NewFunctionDecl(env, "keep_me", nil, irtest.Sym("keep_me"))
	dropped := ir.NewFunctionDecl(env, "internal_helper", nil, irtest.Sym("internal_helper"))

	root := diff.NewCorpusDiff(nil, nil)
	root.AddedFunctions = []*ir.FunctionDecl{kept, dropped}

	ctx := core.NewContext(nil, nil)
	ctx.Suppressions = []core.SuppressionRule{&FunctionRule{NameLiteral: "internal_helper", Change: Added}}

	Apply(ctx, root)

	require.Len(t, root.AddedFunctions, 1)
	assert.Equal(t, "keep_me", root.AddedFunctions[0].QualifiedName())
	assert.Equal(t, 1, root.Stats.NumAddedFuncFilteredOut)
}

func TestApplyFiltersSuppressedUnreferencedSymbols(t *testing.T) {
	root := diff.NewCorpusDiff(nil, nil)
	root.UnreferencedFunctionSymbolsRemoved = []*ir.Symbol{
		{Name: "old_abi_fn"},
		{Name: "still_tracked"},
	}

	ctx := core.NewContext(nil, nil)
	ctx.Suppressions = []core.SuppressionRule{&FunctionRule{SymbolName: "old_abi_fn"}}

	Apply(ctx, root)

	require.Len(t, root.UnreferencedFunctionSymbolsRemoved, 1)
	assert.Equal(t, "still_tracked", root.UnreferencedFunctionSymbolsRemoved[0].Name)
}

func TestIsHarmlessRename(t *testing.T) {
	assert.True(t, IsHarmlessRename("numEntries", "num_entries"))
	assert.False(t, IsHarmlessRename("numEntries", "entryCount"))
}
