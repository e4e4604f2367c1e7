// Package pairing implements spec.md §4.1, the pairing engine: the
// recursive walk over two IR artifacts that builds the diff graph.
//
// Compare is the single recursive entry point every other function in this
// package funnels through. It enforces the idempotence guarantee (spec.md
// §4.1: "if a diff for (x, y) already exists, that instance is returned")
// by consulting the context cache before dispatching, and it interns every
// node it builds immediately after construction and before recursing into
// children — so a cycle through the IR (a class pointing to itself via a
// pointer member) sees the already-registered node on its second
// encounter instead of looping forever.
package pairing

import (
	"fmt"
	"sort"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/editscript"
	"github.com/abigraph/abidiff/internal/ir"
)

// Compare diffs two subjects under ctx, returning the canonical node for
// the pair. Mismatched environments panic via core.RequireSameEnvironment
// (spec.md §7, "environment-mismatch").
func Compare(ctx *core.Context, a, b ir.Subject) diff.Node {
	core.RequireSameEnvironment(a, b)

	key := diff.Key{First: a, Second: b}
	if existing, ok := ctx.LookupKey(key); ok {
		return existing
	}

	if a == nil || b == nil {
		return buildDistinct(ctx, a, b)
	}
	kindA, kindB := subjectKind(a), subjectKind(b)
	if kindA != kindB {
		return buildDistinct(ctx, a, b)
	}

	switch kindA {
	case ir.KindBasic:
		return buildBasic(ctx, a.(*ir.BasicType), b.(*ir.BasicType))
	case ir.KindPointer:
		return comparePointer(ctx, a.(*ir.PointerType), b.(*ir.PointerType))
	case ir.KindReference:
		return compareReference(ctx, a.(*ir.ReferenceType), b.(*ir.ReferenceType))
	case ir.KindQualified:
		return compareQualified(ctx, a.(*ir.QualifiedType), b.(*ir.QualifiedType))
	case ir.KindArray:
		return compareArray(ctx, a.(*ir.ArrayType), b.(*ir.ArrayType))
	case ir.KindTypedef:
		return compareTypedef(ctx, a.(*ir.Typedef), b.(*ir.Typedef))
	case ir.KindEnum:
		return compareEnum(ctx, a.(*ir.Enum), b.(*ir.Enum))
	case ir.KindFunctionType:
		return compareFunctionType(ctx, a.(*ir.FunctionType), b.(*ir.FunctionType))
	case ir.KindFunctionParameter:
		return compareFunctionParameter(ctx, a.(*ir.FunctionParameter), b.(*ir.FunctionParameter))
	case ir.KindClass, ir.KindUnion:
		return compareClass(ctx, a.(*ir.Class), b.(*ir.Class))
	case ir.KindBaseSpecifier:
		return compareBaseSpecifier(ctx, a.(*ir.BaseSpecifier), b.(*ir.BaseSpecifier))
	case ir.KindVariable:
		return compareVariable(ctx, a.(*ir.Variable), b.(*ir.Variable))
	case ir.KindFunctionDecl:
		return compareFunctionDecl(ctx, a.(*ir.FunctionDecl), b.(*ir.FunctionDecl))
	case ir.KindScope:
		return compareScope(ctx, a.(*ir.Scope), b.(*ir.Scope))
	case ir.KindTranslationUnit:
		return compareTranslationUnit(ctx, a.(*ir.TranslationUnit), b.(*ir.TranslationUnit))
	default:
		core.Fatalf("%s", (&core.UnknownSubjectKindError{Kind: kindA.String()}).Error())
		return nil
	}
}

// CompareCorpora is the single top-level entry point spec.md §3's Lifecycle
// names ("a single call to compare two corpora walks the IR and populates
// the context with diff nodes"). It is not routed through Compare's kind
// dispatch: the corpus level has no "distinct kind" possibility, and its
// bucketing rules (retraction across aliases/versions) are specific to
// spec.md §4.1's corpus bullet.
func CompareCorpora(ctx *core.Context, a, b *ir.Corpus) *diff.CorpusDiff {
	root := diff.NewCorpusDiff(a, b)
	ctx.Intern(root)

	root.OldSOName, root.NewSOName = a.SOName, b.SOName
	root.SONameChanged = a.SOName != b.SOName
	root.OldArch, root.NewArch = a.Architecture, b.Architecture
	root.ArchChanged = a.Architecture != b.Architecture

	diffFunctions(ctx, root, a.Functions, b.Functions)
	diffVariables(ctx, root, a.Variables, b.Variables)
	diffUnreferencedFunctionSymbols(ctx, root, a, b)
	diffUnreferencedVariableSymbols(ctx, root, a, b)

	root.Stats.NumFuncRemoved = len(root.RemovedFunctions)
	root.Stats.NumFuncAdded = len(root.AddedFunctions)
	root.Stats.NumFuncChanged = len(root.ChangedFunctions)
	root.Stats.NumVarRemoved = len(root.RemovedVariables)
	root.Stats.NumVarAdded = len(root.AddedVariables)
	root.Stats.NumVarChanged = len(root.ChangedVariables)
	root.Stats.NumFuncSymsUnreferenced = len(a.UnreferencedFunctionSymbols) + len(b.UnreferencedFunctionSymbols)
	root.Stats.NumVarSymsUnreferenced = len(a.UnreferencedVariableSymbols) + len(b.UnreferencedVariableSymbols)

	return root
}

func subjectKind(s ir.Subject) ir.Kind {
	if s == nil {
		// spec.md §9: "both subjects absent" is a noted peculiarity of the
		// distinct-diff rule. Compare sends any pair with an absent side to
		// buildDistinct before dispatching on kind, so KindBasic is only an
		// arbitrary stand-in here and never reaches a type assertion.
		return ir.KindBasic
	}
	return s.Kind()
}

// buildDistinct implements spec.md §4.1's "distinct" rule: if kinds
// disagree, build a distinct diff whose optional compatible child is the
// diff of the typedef-stripped leaves, present only if stripping typedefs
// from both sides leaves them sharing a kind.
func buildDistinct(ctx *core.Context, a, b ir.Subject) *diff.DistinctDiff {
	n := diff.NewDistinctDiff(a, b)
	ctx.Intern(n)
	leafA, leafB := stripTypedefs(a), stripTypedefs(b)
	if leafA != nil && leafB != nil && subjectKind(leafA) == subjectKind(leafB) {
		compatible := Compare(ctx, leafA, leafB)
		n.Compatible = compatible
		n.AddChild(compatible)
		if !diff.HasChanges(compatible) {
			n.SetLocalCategory(category.Union(n.LocalCategory(), category.CompatibleType))
		}
	}
	return n
}

func stripTypedefs(s ir.Subject) ir.Subject {
	for {
		td, ok := s.(*ir.Typedef)
		if !ok {
			return s
		}
		s = td.Underlying
	}
}

func buildBasic(ctx *core.Context, a, b *ir.BasicType) *diff.DistinctDiff {
	n := diff.NewDistinctDiff(a, b)
	ctx.Intern(n)
	if a.BitSize != b.BitSize {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	} else if a.QualifiedName() != b.QualifiedName() {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	return n
}

func comparePointer(ctx *core.Context, a, b *ir.PointerType) *diff.PointerDiff {
	n := diff.NewPointerDiff(a, b)
	ctx.Intern(n)
	n.Underlying = Compare(ctx, a.Underlying, b.Underlying)
	n.AddChild(n.Underlying)
	if a.BitSize != b.BitSize || a.BitAlign != b.BitAlign {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	return n
}

func compareReference(ctx *core.Context, a, b *ir.ReferenceType) *diff.ReferenceDiff {
	n := diff.NewReferenceDiff(a, b)
	ctx.Intern(n)
	n.Underlying = Compare(ctx, a.Underlying, b.Underlying)
	n.AddChild(n.Underlying)
	if a.BitSize != b.BitSize || a.BitAlign != b.BitAlign {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	return n
}

func compareQualified(ctx *core.Context, a, b *ir.QualifiedType) *diff.QualifiedDiff {
	n := diff.NewQualifiedDiff(a, b)
	ctx.Intern(n)
	n.Underlying = Compare(ctx, a.Underlying, b.Underlying)
	n.AddChild(n.Underlying)
	if a.Const != b.Const || a.Volatile != b.Volatile || a.Restrict != b.Restrict {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.CompatibleType))
	}
	return n
}

func compareArray(ctx *core.Context, a, b *ir.ArrayType) *diff.ArrayDiff {
	n := diff.NewArrayDiff(a, b)
	ctx.Intern(n)
	n.Element = Compare(ctx, a.Element, b.Element)
	n.AddChild(n.Element)
	if !sameDimensions(a.Dimensions, b.Dimensions) {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	return n
}

func sameDimensions(a, b []ir.Subrange) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Length != b[i].Length {
			return false
		}
	}
	return true
}

func compareTypedef(ctx *core.Context, a, b *ir.Typedef) *diff.TypedefDiff {
	n := diff.NewTypedefDiff(a, b)
	ctx.Intern(n)
	n.Underlying = Compare(ctx, a.Underlying, b.Underlying)
	n.AddChild(n.Underlying)
	if a.QualifiedName() != b.QualifiedName() && !diff.HasChanges(n.Underlying) {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	return n
}

// compareEnum implements spec.md §4.1's enum rule: underlying-type diff,
// plus an edit script over enumerator lists; deletions paired with
// insertions of the same name become a value change for that enumerator.
func compareEnum(ctx *core.Context, a, b *ir.Enum) *diff.EnumDiff {
	n := diff.NewEnumDiff(a, b)
	ctx.Intern(n)
	n.Underlying = Compare(ctx, a.Underlying, b.Underlying)
	n.AddChild(n.Underlying)

	script := editscript.Diff(a.Values, b.Values, func(v ir.EnumValue) string { return fmt.Sprintf("%s\x00%d", v.Name, v.Value) })

	deletedByName := map[string]ir.EnumValue{}
	for _, d := range script.Deletions {
		deletedByName[d.Element.Name] = d.Element
	}
	insertedByName := map[string]ir.EnumValue{}
	for _, ins := range script.Insertions {
		for _, e := range ins.Elements {
			insertedByName[e.Name] = e
		}
	}

	for name, oldV := range deletedByName {
		if newV, ok := insertedByName[name]; ok {
			delete(insertedByName, name)
			if oldV.Value != newV.Value {
				n.ChangedEnumerators = append(n.ChangedEnumerators, diff.EnumeratorValueChange{
					Name: name, OldValue: oldV.Value, NewValue: newV.Value,
				})
			}
			continue
		}
		n.DeletedEnumerators = append(n.DeletedEnumerators, oldV)
	}
	for _, v := range insertedByName {
		n.InsertedEnumerators = append(n.InsertedEnumerators, v)
	}
	sort.Slice(n.DeletedEnumerators, func(i, j int) bool { return n.DeletedEnumerators[i].Name < n.DeletedEnumerators[j].Name })
	sort.Slice(n.InsertedEnumerators, func(i, j int) bool { return n.InsertedEnumerators[i].Name < n.InsertedEnumerators[j].Name })
	sort.Slice(n.ChangedEnumerators, func(i, j int) bool { return n.ChangedEnumerators[i].Name < n.ChangedEnumerators[j].Name })

	switch {
	case len(n.ChangedEnumerators) > 0 || len(n.DeletedEnumerators) > 0 || len(n.InsertedEnumerators) > 0:
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessEnum))
	case a.QualifiedName() != b.QualifiedName():
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	if a.BitSize != b.BitSize || a.BitAlign != b.BitAlign {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	return n
}

func compareFunctionParameter(ctx *core.Context, a, b *ir.FunctionParameter) *diff.FunctionParameterDiff {
	n := diff.NewFunctionParameterDiff(a, b, a.Index)
	ctx.Intern(n)
	n.Type = Compare(ctx, a.Type, b.Type)
	n.AddChild(n.Type)
	return n
}

// parameterToken collapses a parameter to a key that is equal across the
// edit script iff both its declared name and its type's qualified name
// match — so the script only reports a delete/insert pair when something
// about the parameter actually differs.
func parameterToken(p *ir.FunctionParameter) string {
	return p.QualifiedName() + "\x00" + p.Type.QualifiedName()
}

// compareFunctionType implements spec.md §4.1's function-type rule and its
// tie-breaking paragraph: name equality between a deletion and an
// insertion wins first (sub-type-changed, keyed by name); failing that, a
// deletion and insertion occupying the same original positional index and
// differing in type are promoted to a changed parameter keyed by that
// index; anything left over stays in the removed/added buckets.
func compareFunctionType(ctx *core.Context, a, b *ir.FunctionType) *diff.FunctionTypeDiff {
	n := diff.NewFunctionTypeDiff(a, b)
	ctx.Intern(n)
	n.Return = Compare(ctx, a.Return, b.Return)
	n.AddChild(n.Return)

	script := editscript.Diff(a.Parameters, b.Parameters, parameterToken)

	dels := make([]*ir.FunctionParameter, len(script.Deletions))
	for i, d := range script.Deletions {
		dels[i] = d.Element
	}
	var inss []*ir.FunctionParameter
	for _, block := range script.Insertions {
		inss = append(inss, block.Elements...)
	}

	delByName := map[string]*ir.FunctionParameter{}
	var delUnnamed []*ir.FunctionParameter
	for _, d := range dels {
		if d.QualifiedName() == "" {
			delUnnamed = append(delUnnamed, d)
			continue
		}
		delByName[d.QualifiedName()] = d
	}

	var insRemaining []*ir.FunctionParameter
	for _, ins := range inss {
		name := ins.QualifiedName()
		if name == "" {
			insRemaining = append(insRemaining, ins)
			continue
		}
		if old, ok := delByName[name]; ok {
			n.SubTypeChangedParameters[name] = Compare(ctx, old.Type, ins.Type)
			n.AddChild(n.SubTypeChangedParameters[name])
			delete(delByName, name)
			continue
		}
		insRemaining = append(insRemaining, ins)
	}

	var delRemaining []*ir.FunctionParameter
	delRemaining = append(delRemaining, delUnnamed...)
	for _, d := range delByName {
		delRemaining = append(delRemaining, d)
	}
	sort.Slice(delRemaining, func(i, j int) bool { return delRemaining[i].Index < delRemaining[j].Index })
	sort.Slice(insRemaining, func(i, j int) bool { return insRemaining[i].Index < insRemaining[j].Index })

	insByIndex := map[int]*ir.FunctionParameter{}
	for _, ins := range insRemaining {
		insByIndex[ins.Index] = ins
	}
	for _, d := range delRemaining {
		if ins, ok := insByIndex[d.Index]; ok && d.Type.QualifiedName() != ins.Type.QualifiedName() {
			n.ChangedParameters[d.Index] = Compare(ctx, d.Type, ins.Type)
			n.AddChild(n.ChangedParameters[d.Index])
			delete(insByIndex, d.Index)
			continue
		}
		n.RemovedParameters[paramKey(d)] = d
	}
	for _, ins := range insRemaining {
		if _, consumed := insByIndex[ins.Index]; !consumed {
			continue
		}
		n.AddedParameters[paramKey(ins)] = ins
	}
	return n
}

func paramKey(p *ir.FunctionParameter) string {
	if p.QualifiedName() != "" {
		return p.QualifiedName()
	}
	return p.Type.QualifiedName()
}

func compareBaseSpecifier(ctx *core.Context, a, b *ir.BaseSpecifier) *diff.BaseSpecifierDiff {
	n := diff.NewBaseSpecifierDiff(a, b)
	ctx.Intern(n)
	n.ClassDiff = Compare(ctx, a.ClassType, b.ClassType)
	n.AddChild(n.ClassDiff)
	if a.Access != b.Access {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.Access))
	}
	if a.Offset != b.Offset {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	return n
}

func compareVariable(ctx *core.Context, a, b *ir.Variable) *diff.VariableDiff {
	n := diff.NewVariableDiff(a, b)
	ctx.Intern(n)
	n.Type = Compare(ctx, a.Type, b.Type)
	n.AddChild(n.Type)
	if a.QualifiedName() != b.QualifiedName() && !diff.HasChanges(n.Type) {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	return n
}

func compareFunctionDecl(ctx *core.Context, a, b *ir.FunctionDecl) *diff.FunctionDeclDiff {
	n := diff.NewFunctionDeclDiff(a, b)
	ctx.Intern(n)
	n.Type = Compare(ctx, a.Type, b.Type)
	n.AddChild(n.Type)
	if a.VTableOffset != b.VTableOffset {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.VirtualMember, category.SizeOrOffset))
	}
	if a.DeclaredVirtual != b.DeclaredVirtual {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.VirtualMember))
	}
	if a.QualifiedName() != b.QualifiedName() && !diff.HasChanges(n.Type) {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	return n
}

// compareClass implements spec.md §4.1's class rule: diff base specifiers,
// data members and member functions via the edit-script primitive, with
// the offset-keyed promotion rule for data members ("data member replaced
// at offset").
func compareClass(ctx *core.Context, a, b *ir.Class) *diff.ClassDiff {
	n := diff.NewClassDiff(a, b, a.IsUnion)
	ctx.Intern(n)

	diffBases(ctx, n, a, b)
	diffDataMembers(ctx, n, a, b)
	diffMemberFunctions(ctx, n, a, b)
	diffMemberTypes(ctx, n, a, b)

	if a.BitSize != b.BitSize || a.BitAlign != b.BitAlign {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
	if a.QualifiedName() != b.QualifiedName() && !structuralChanges(n) {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.HarmlessDeclName))
	}
	return n
}

func structuralChanges(n *diff.ClassDiff) bool {
	return len(n.DeletedBases) > 0 || len(n.InsertedBases) > 0 || len(n.ChangedBases) > 0 ||
		len(n.DeletedDataMembers) > 0 || len(n.InsertedDataMembers) > 0 || len(n.ChangedDataMembers) > 0 ||
		len(n.DeletedMemberFunctions) > 0 || len(n.InsertedMemberFunctions) > 0 || len(n.ChangedMemberFunctions) > 0
}

func diffBases(ctx *core.Context, n *diff.ClassDiff, a, b *ir.Class) {
	script := editscript.Diff(a.Bases, b.Bases, func(bs *ir.BaseSpecifier) string { return bs.ClassType.QualifiedName() })
	byName := map[string]*ir.BaseSpecifier{}
	for _, d := range script.Deletions {
		byName[d.Element.ClassType.QualifiedName()] = d.Element
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			name := ins.ClassType.QualifiedName()
			if old, ok := byName[name]; ok {
				cd := Compare(ctx, old, ins)
				n.ChangedBases = append(n.ChangedBases, cd)
				n.AddChild(cd)
				delete(byName, name)
				continue
			}
			n.InsertedBases = append(n.InsertedBases, ins)
		}
	}
	for _, d := range byName {
		n.DeletedBases = append(n.DeletedBases, d)
	}
}

func diffDataMembers(ctx *core.Context, n *diff.ClassDiff, a, b *ir.Class) {
	script := editscript.Diff(a.DataMembers, b.DataMembers, func(m *ir.DataMember) string {
		return fmt.Sprintf("%s\x00%d\x00%s\x00%t\x00%d", m.Name, m.Offset, subjectName(m.Type), m.Static, m.Access)
	})
	byName := map[string]*ir.DataMember{}
	for _, d := range script.Deletions {
		byName[d.Element.Name] = d.Element
	}
	byOffset := map[int64]*ir.DataMember{}
	if !a.IsUnion {
		for _, m := range byName {
			byOffset[m.Offset] = m
		}
	}
	var unmatched []*ir.DataMember
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if old, ok := byName[ins.Name]; ok {
				c := buildDataMemberChange(ctx, old, ins, false)
				n.ChangedDataMembers = append(n.ChangedDataMembers, c)
				categorizeDataMemberChange(n, c)
				delete(byName, ins.Name)
				delete(byOffset, old.Offset)
				continue
			}
			unmatched = append(unmatched, ins)
		}
	}
	for _, ins := range unmatched {
		if old, ok := byOffset[ins.Offset]; !a.IsUnion && ok {
			c := buildDataMemberChange(ctx, old, ins, true)
			n.ChangedDataMembers = append(n.ChangedDataMembers, c)
			categorizeDataMemberChange(n, c)
			delete(byName, old.Name)
			delete(byOffset, ins.Offset)
			continue
		}
		n.InsertedDataMembers = append(n.InsertedDataMembers, ins)
		categorizeDataMemberPresence(n, ins.Static)
	}
	for _, m := range byName {
		n.DeletedDataMembers = append(n.DeletedDataMembers, m)
		categorizeDataMemberPresence(n, m.Static)
	}
	sort.Slice(n.ChangedDataMembers, func(i, j int) bool { return n.ChangedDataMembers[i].OldName < n.ChangedDataMembers[j].OldName })
}

// categorizeDataMemberChange reflects a ChangedDataMembers entry onto the
// owning ClassDiff's category: buildDataMemberChange's result is a plain
// struct, not its own diff.Node, so its offset/access/static-ness
// differences would otherwise be invisible to diff.HasChanges and the
// reporter's filtering (spec.md §4.7).
func categorizeDataMemberChange(n *diff.ClassDiff, c diff.DataMemberChange) {
	if c.OldOffset != c.NewOffset {
		if c.NewStatic {
			n.SetLocalCategory(category.Union(n.LocalCategory(), category.StaticDataMember))
		} else {
			n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
		}
	}
	if c.AccessChanged {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.Access))
	}
	if c.StaticChanged {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.StaticDataMember))
	}
}

// categorizeDataMemberPresence reflects a deleted/inserted data member onto
// the owning ClassDiff's category: a static member's presence has no
// instance-layout impact, a non-static member's does.
func categorizeDataMemberPresence(n *diff.ClassDiff, static bool) {
	if static {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.StaticDataMember))
	} else {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.SizeOrOffset))
	}
}

func subjectName(s ir.Subject) string {
	if s == nil {
		return ""
	}
	return s.QualifiedName()
}

func buildDataMemberChange(ctx *core.Context, old, neu *ir.DataMember, replacedAtOffset bool) diff.DataMemberChange {
	return diff.DataMemberChange{
		OldName: old.Name, NewName: neu.Name,
		OldOffset: old.Offset, NewOffset: neu.Offset,
		ReplacedAtOffset: replacedAtOffset,
		TypeDiff:         Compare(ctx, old.Type, neu.Type),
		OldAccess:        old.Access, NewAccess: neu.Access,
		AccessChanged: old.Access != neu.Access,
		OldStatic:     old.Static, NewStatic: neu.Static,
		StaticChanged: old.Static != neu.Static,
	}
}

func diffMemberFunctions(ctx *core.Context, n *diff.ClassDiff, a, b *ir.Class) {
	script := editscript.Diff(a.MemberFunctions, b.MemberFunctions, func(m *ir.MemberFunction) string {
		sig := ""
		if m.Function.Type != nil {
			sig = m.Function.Type.QualifiedName()
		}
		return fmt.Sprintf("%s\x00%s\x00%t\x00%d\x00%d", m.Function.QualifiedName(), sig, m.Virtual, m.VTableOffset, m.Access)
	})
	byName := map[string]*ir.MemberFunction{}
	for _, d := range script.Deletions {
		byName[d.Element.Function.QualifiedName()] = d.Element
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			name := ins.Function.QualifiedName()
			if old, ok := byName[name]; ok {
				c := buildMemberFunctionChange(ctx, old, ins)
				n.ChangedMemberFunctions = append(n.ChangedMemberFunctions, c)
				categorizeMemberFunctionChange(n, c)
				delete(byName, name)
				continue
			}
			n.InsertedMemberFunctions = append(n.InsertedMemberFunctions, ins)
			categorizeMemberFunctionPresence(n, ins.Virtual)
		}
	}
	for _, m := range byName {
		n.DeletedMemberFunctions = append(n.DeletedMemberFunctions, m)
		categorizeMemberFunctionPresence(n, m.Virtual)
	}
}

// categorizeMemberFunctionChange mirrors categorizeDataMemberChange: a
// MemberFunctionChange is a plain struct, so its vtable/access differences
// need to land on the owning ClassDiff's category directly.
func categorizeMemberFunctionChange(n *diff.ClassDiff, c diff.MemberFunctionChange) {
	if c.VirtualChanged || c.VTableOffsetChanged {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.VirtualMember))
	}
	if c.AccessChanged {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.Access))
	}
	if !c.VirtualChanged && !c.VTableOffsetChanged && !c.AccessChanged && !c.NewVirtual {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.NonVirtualMemberFunction))
	}
}

// categorizeMemberFunctionPresence reflects a deleted/inserted member
// function onto the owning ClassDiff's category: a virtual member moves
// vtable slots around, a non-virtual one doesn't.
func categorizeMemberFunctionPresence(n *diff.ClassDiff, virtual bool) {
	if virtual {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.VirtualMember))
	} else {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.NonVirtualMemberFunction))
	}
}

func buildMemberFunctionChange(ctx *core.Context, old, neu *ir.MemberFunction) diff.MemberFunctionChange {
	return diff.MemberFunctionChange{
		FunctionDiff:        Compare(ctx, old.Function, neu.Function),
		OldVirtual:          old.Virtual, NewVirtual: neu.Virtual,
		VirtualChanged:      old.Virtual != neu.Virtual,
		OldVTableOffset:     old.VTableOffset, NewVTableOffset: neu.VTableOffset,
		VTableOffsetChanged: old.VTableOffset != neu.VTableOffset,
		OldAccess:           old.Access, NewAccess: neu.Access,
		AccessChanged: old.Access != neu.Access,
	}
}

func diffMemberTypes(ctx *core.Context, n *diff.ClassDiff, a, b *ir.Class) {
	script := editscript.Diff(a.MemberTypes, b.MemberTypes, func(m *ir.MemberType) string { return m.Name })
	byName := map[string]*ir.MemberType{}
	for _, d := range script.Deletions {
		byName[d.Element.Name] = d.Element
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if old, ok := byName[ins.Name]; ok {
				td := Compare(ctx, old.Type, ins.Type)
				n.ChangedMemberTypes = append(n.ChangedMemberTypes, td)
				n.AddChild(td)
				delete(byName, ins.Name)
				continue
			}
			n.InsertedMemberTypes = append(n.InsertedMemberTypes, ins)
		}
	}
	for _, m := range byName {
		n.DeletedMemberTypes = append(n.DeletedMemberTypes, m)
	}
}

func compareScope(ctx *core.Context, a, b *ir.Scope) *diff.ScopeDiff {
	n := diff.NewScopeDiff(a, b)
	ctx.Intern(n)

	declScript := editscript.Diff(a.Decls, b.Decls, func(s ir.Subject) string { return s.QualifiedName() })
	declByName := map[string]ir.Subject{}
	for _, d := range declScript.Deletions {
		declByName[d.Element.QualifiedName()] = d.Element
	}
	for _, block := range declScript.Insertions {
		for _, ins := range block.Elements {
			if old, ok := declByName[ins.QualifiedName()]; ok {
				cd := Compare(ctx, old, ins)
				n.ChangedDecls = append(n.ChangedDecls, cd)
				n.AddChild(cd)
				delete(declByName, ins.QualifiedName())
				continue
			}
			n.AddedDecls = append(n.AddedDecls, ins)
		}
	}
	for _, d := range declByName {
		n.RemovedDecls = append(n.RemovedDecls, d)
	}

	typeScript := editscript.Diff(a.Types, b.Types, func(s ir.Subject) string { return s.QualifiedName() })
	typeByName := map[string]ir.Subject{}
	for _, d := range typeScript.Deletions {
		typeByName[d.Element.QualifiedName()] = d.Element
	}
	for _, block := range typeScript.Insertions {
		for _, ins := range block.Elements {
			if old, ok := typeByName[ins.QualifiedName()]; ok {
				cd := Compare(ctx, old, ins)
				n.ChangedTypes = append(n.ChangedTypes, cd)
				n.AddChild(cd)
				delete(typeByName, ins.QualifiedName())
				continue
			}
			n.AddedTypes = append(n.AddedTypes, ins)
		}
	}
	for _, d := range typeByName {
		n.RemovedTypes = append(n.RemovedTypes, d)
	}
	return n
}

func compareTranslationUnit(ctx *core.Context, a, b *ir.TranslationUnit) *diff.TranslationUnitDiff {
	n := diff.NewTranslationUnitDiff(a, b)
	ctx.Intern(n)
	n.Global = Compare(ctx, a.Global, b.Global)
	n.AddChild(n.Global)
	return n
}

// diffFunctions implements spec.md §4.1's corpus bullet for the defined
// functions sequence: an edit script bucketed by qualified name, with
// retraction for symbols that still exist in the new corpus under an
// alias or a re-versioned default symbol (spec.md §4.1, "Deletions whose
// symbols still exist in the new corpus... are retracted"), and the
// symmetric retraction of additions whose symbol name or an alias of it
// already existed in the old corpus.
func diffFunctions(ctx *core.Context, root *diff.CorpusDiff, a, b []*ir.FunctionDecl) {
	script := editscript.Diff(a, b, func(f *ir.FunctionDecl) string { return f.QualifiedName() })
	byName := map[string]*ir.FunctionDecl{}
	for _, d := range script.Deletions {
		byName[d.Element.QualifiedName()] = d.Element
	}
	newBySymbol := symbolIndex(b)
	oldBySymbol := symbolIndex(a)
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if old, ok := byName[ins.QualifiedName()]; ok {
				cd := Compare(ctx, old, ins)
				root.ChangedFunctions = append(root.ChangedFunctions, cd)
				root.AddChild(cd)
				delete(byName, ins.QualifiedName())
				continue
			}
			if symbolRetracted(ins.Symbol, newBySymbol) {
				continue // default-version symbol whose unversioned counterpart already existed: not added
			}
			if symbolStillPresent(ins.Symbol, oldBySymbol) {
				continue // retracted: symbol (possibly aliased) already existed in the old corpus
			}
			root.AddedFunctions = append(root.AddedFunctions, ins)
		}
	}
	for _, old := range byName {
		if symbolStillPresent(old.Symbol, newBySymbol) {
			continue // retracted: symbol (possibly aliased/re-versioned) survives under another name
		}
		root.RemovedFunctions = append(root.RemovedFunctions, old)
	}
	sort.Slice(root.RemovedFunctions, func(i, j int) bool { return root.RemovedFunctions[i].QualifiedName() < root.RemovedFunctions[j].QualifiedName() })
	sort.Slice(root.AddedFunctions, func(i, j int) bool { return root.AddedFunctions[i].QualifiedName() < root.AddedFunctions[j].QualifiedName() })
}

func diffVariables(ctx *core.Context, root *diff.CorpusDiff, a, b []*ir.Variable) {
	script := editscript.Diff(a, b, func(v *ir.Variable) string { return v.QualifiedName() })
	byName := map[string]*ir.Variable{}
	for _, d := range script.Deletions {
		byName[d.Element.QualifiedName()] = d.Element
	}
	newBySymbol := map[string]bool{}
	for _, v := range b {
		if v.Symbol != nil {
			newBySymbol[v.Symbol.Name] = true
			for _, alias := range v.Symbol.Aliases {
				newBySymbol[alias] = true
			}
		}
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if old, ok := byName[ins.QualifiedName()]; ok {
				cd := Compare(ctx, old, ins)
				root.ChangedVariables = append(root.ChangedVariables, cd)
				root.AddChild(cd)
				delete(byName, ins.QualifiedName())
				continue
			}
			root.AddedVariables = append(root.AddedVariables, ins)
		}
	}
	for _, old := range byName {
		if old.Symbol != nil && newBySymbol[old.Symbol.Name] {
			continue
		}
		root.RemovedVariables = append(root.RemovedVariables, old)
	}
	sort.Slice(root.RemovedVariables, func(i, j int) bool { return root.RemovedVariables[i].QualifiedName() < root.RemovedVariables[j].QualifiedName() })
	sort.Slice(root.AddedVariables, func(i, j int) bool { return root.AddedVariables[i].QualifiedName() < root.AddedVariables[j].QualifiedName() })
}

type symbolSet struct {
	byName map[string]bool
}

func symbolIndex(fns []*ir.FunctionDecl) symbolSet {
	s := symbolSet{byName: map[string]bool{}}
	for _, f := range fns {
		if f.Symbol == nil {
			continue
		}
		s.byName[f.Symbol.Name] = true
		for _, alias := range f.Symbol.Aliases {
			s.byName[alias] = true
		}
	}
	return s
}

func symbolStillPresent(sym *ir.Symbol, in symbolSet) bool {
	if sym == nil {
		return false
	}
	if in.byName[sym.Name] {
		return true
	}
	for _, alias := range sym.Aliases {
		if in.byName[alias] {
			return true
		}
	}
	return false
}

// symbolRetracted is the hook for the narrower "default-version symbol
// whose unversioned counterpart exists in the old corpus" rule. It always
// returns false. Because symbols are indexed by name only, diffFunctions'
// symbolStillPresent check against the old corpus already retracts an
// addition whose symbol name existed there, whatever its version.
func symbolRetracted(sym *ir.Symbol, in symbolSet) bool {
	return false
}

func diffUnreferencedFunctionSymbols(ctx *core.Context, root *diff.CorpusDiff, a, b *ir.Corpus) {
	script := editscript.Diff(a.UnreferencedFunctionSymbols, b.UnreferencedFunctionSymbols, func(s *ir.Symbol) string { return s.Name })
	removedByName := map[string]*ir.Symbol{}
	for _, d := range script.Deletions {
		removedByName[d.Element.Name] = d.Element
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if _, ok := removedByName[ins.Name]; ok {
				delete(removedByName, ins.Name)
				continue
			}
			root.UnreferencedFunctionSymbolsAdded = append(root.UnreferencedFunctionSymbolsAdded, ins)
		}
	}
	for _, s := range removedByName {
		root.UnreferencedFunctionSymbolsRemoved = append(root.UnreferencedFunctionSymbolsRemoved, s)
	}
}

func diffUnreferencedVariableSymbols(ctx *core.Context, root *diff.CorpusDiff, a, b *ir.Corpus) {
	script := editscript.Diff(a.UnreferencedVariableSymbols, b.UnreferencedVariableSymbols, func(s *ir.Symbol) string { return s.Name })
	removedByName := map[string]*ir.Symbol{}
	for _, d := range script.Deletions {
		removedByName[d.Element.Name] = d.Element
	}
	for _, block := range script.Insertions {
		for _, ins := range block.Elements {
			if _, ok := removedByName[ins.Name]; ok {
				delete(removedByName, ins.Name)
				continue
			}
			root.UnreferencedVariableSymbolsAdded = append(root.UnreferencedVariableSymbolsAdded, ins)
		}
	}
	for _, s := range removedByName {
		root.UnreferencedVariableSymbolsRemoved = append(root.UnreferencedVariableSymbolsRemoved, s)
	}
}
