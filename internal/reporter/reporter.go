// Package reporter implements spec.md §4.7: the human-facing text
// renderer walking an un-suppressed, non-redundant diff graph, plus the
// ambient YAML-summary and HTML variants (SPEC_FULL.md §6).
package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
)

// toBeReported implements spec.md §4.7's predicate: "the node has changes
// AND is not filtered out. A node is filtered out if its category is not
// NO-CHANGE and no bit of its category (excluding REDUNDANT) falls within
// the allowed-category mask, OR it is SUPPRESSED, OR it is REDUNDANT and
// redundant changes are hidden."
func toBeReported(ctx *core.Context, n diff.Node) bool {
	if !diff.HasChanges(n) {
		return false
	}
	// Union with LocalCategory: SUPPRESSED/REDUNDANT are set directly on a
	// node by internal/suppress and internal/redundancy, both of which run
	// after internal/propagate has already computed InheritedCategory
	// (spec.md §3's stated pass order), so reading InheritedCategory alone
	// would miss them.
	cat := category.Union(n.InheritedCategory(), n.LocalCategory())
	if !cat.IsNoChange() {
		nonRedundant := category.Subtract(cat, category.Redundant)
		if !nonRedundant.HasAny(ctx.AllowedCategories) {
			return false
		}
	}
	if cat.Has(category.Suppressed) {
		return false
	}
	if cat.Has(category.Redundant) && !ctx.Display.ShowRedundantChanges {
		return false
	}
	return true
}

// VTableOffsetChangedAndVisible walks root's changed-function bucket and
// reports whether any surviving (to-be-reported) change includes a vtable
// offset move, the input diff.CorpusDiff.HasIncompatibleChanges needs but
// can't compute itself (spec.md §6: incompatibility requires the change
// to have survived category filtering and suppression).
func VTableOffsetChangedAndVisible(ctx *core.Context, root *diff.CorpusDiff) bool {
	for _, fd := range root.ChangedFunctions {
		if !toBeReported(ctx, fd) {
			continue
		}
		f, ok := fd.(*diff.FunctionDeclDiff)
		if !ok {
			continue
		}
		a, _ := f.First().(*ir.FunctionDecl)
		b, _ := f.Second().(*ir.FunctionDecl)
		if a != nil && b != nil && a.VTableOffset != b.VTableOffset {
			return true
		}
	}
	return false
}

// Report writes the textual report for root to w, using ctx's display
// flags and category mask. Report clears the context's reported-once bits
// first so repeated calls over the same graph are idempotent (spec.md §8,
// "Idempotence of reporting").
func Report(ctx *core.Context, w io.Writer, root *diff.CorpusDiff) error {
	ctx.ClearReportedOnce()
	rw := &reportWriter{ctx: ctx, w: w}
	return rw.writeCorpus(root)
}

type reportWriter struct {
	ctx *core.Context
	w   io.Writer
	err error
}

func (rw *reportWriter) printf(depth int, format string, args ...interface{}) {
	if rw.err != nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	_, rw.err = fmt.Fprintf(rw.w, "%s"+format+"\n", append([]interface{}{indent}, args...)...)
}

func (rw *reportWriter) writeCorpus(root *diff.CorpusDiff) error {
	if rw.ctx.Display.ShowSONameChange && root.SONameChanged {
		rw.printf(0, "SONAME changed from '%s' to '%s'", root.OldSOName, root.NewSOName)
	}
	if rw.ctx.Display.ShowArchitectureChange && root.ArchChanged {
		rw.printf(0, "architecture changed from '%s' to '%s'", root.OldArch, root.NewArch)
	}

	rw.printf(0, "Functions changes summary: %d Removed, %d Changed, %d Added functions",
		root.Stats.NetFuncRemoved(), root.Stats.NetFuncChanged(), root.Stats.NetFuncAdded())
	rw.printf(0, "Variables changes summary: %d Removed, %d Changed, %d Added variables",
		root.Stats.NetVarRemoved(), root.Stats.NetVarChanged(), root.Stats.NetVarAdded())

	if rw.ctx.Display.ShowStatsOnly {
		return rw.err
	}

	if rw.ctx.Display.ShowDeletedFunctions && len(root.RemovedFunctions) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Removed function%s:", len(root.RemovedFunctions), plural(len(root.RemovedFunctions)))
		for _, f := range root.RemovedFunctions {
			rw.printf(1, "'%s'%s", f.QualifiedName(), linkageSuffix(rw.ctx, f))
		}
	}
	if rw.ctx.Display.ShowAddedFunctions && len(root.AddedFunctions) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Added function%s:", len(root.AddedFunctions), plural(len(root.AddedFunctions)))
		for _, f := range root.AddedFunctions {
			rw.printf(1, "'%s'%s", f.QualifiedName(), linkageSuffix(rw.ctx, f))
		}
	}
	if rw.ctx.Display.ShowChangedFunctions && len(root.ChangedFunctions) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d function%s with some indirect sub-type change:", len(root.ChangedFunctions), plural(len(root.ChangedFunctions)))
		for _, fd := range root.ChangedFunctions {
			if toBeReported(rw.ctx, fd) {
				rw.writeFunctionDecl(1, fd.(*diff.FunctionDeclDiff))
			}
		}
	}

	if rw.ctx.Display.ShowDeletedVariables && len(root.RemovedVariables) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Removed variable%s:", len(root.RemovedVariables), plural(len(root.RemovedVariables)))
		for _, v := range root.RemovedVariables {
			rw.printf(1, "'%s'", v.QualifiedName())
		}
	}
	if rw.ctx.Display.ShowAddedVariables && len(root.AddedVariables) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Added variable%s:", len(root.AddedVariables), plural(len(root.AddedVariables)))
		for _, v := range root.AddedVariables {
			rw.printf(1, "'%s'", v.QualifiedName())
		}
	}
	if rw.ctx.Display.ShowChangedVariables && len(root.ChangedVariables) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Changed variable%s:", len(root.ChangedVariables), plural(len(root.ChangedVariables)))
		for _, vd := range root.ChangedVariables {
			if toBeReported(rw.ctx, vd) {
				rw.writeVariable(1, vd.(*diff.VariableDiff))
			}
		}
	}

	if rw.ctx.Display.ShowSymbolsUnreferencedByDebugInfo {
		rw.writeUnreferencedSymbols(root)
	}

	return rw.err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func linkageSuffix(ctx *core.Context, f *ir.FunctionDecl) string {
	if !ctx.Display.ShowLinkageNames || f.LinkageName == "" {
		return ""
	}
	return fmt.Sprintf("    {%s}", f.LinkageName)
}

func (rw *reportWriter) writeUnreferencedSymbols(root *diff.CorpusDiff) {
	if len(root.UnreferencedFunctionSymbolsRemoved) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Removed unreferenced function symbol%s:", len(root.UnreferencedFunctionSymbolsRemoved), plural(len(root.UnreferencedFunctionSymbolsRemoved)))
		for _, s := range root.UnreferencedFunctionSymbolsRemoved {
			rw.printf(1, "'%s'", s.Name)
		}
	}
	if rw.ctx.Display.ShowAddedSymbolsUnreferencedByDebugInfo && len(root.UnreferencedFunctionSymbolsAdded) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Added unreferenced function symbol%s:", len(root.UnreferencedFunctionSymbolsAdded), plural(len(root.UnreferencedFunctionSymbolsAdded)))
		for _, s := range root.UnreferencedFunctionSymbolsAdded {
			rw.printf(1, "'%s'", s.Name)
		}
	}
	if len(root.UnreferencedVariableSymbolsRemoved) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Removed unreferenced variable symbol%s:", len(root.UnreferencedVariableSymbolsRemoved), plural(len(root.UnreferencedVariableSymbolsRemoved)))
		for _, s := range root.UnreferencedVariableSymbolsRemoved {
			rw.printf(1, "'%s'", s.Name)
		}
	}
	if rw.ctx.Display.ShowAddedSymbolsUnreferencedByDebugInfo && len(root.UnreferencedVariableSymbolsAdded) > 0 {
		rw.printf(0, "")
		rw.printf(0, "%d Added unreferenced variable symbol%s:", len(root.UnreferencedVariableSymbolsAdded), plural(len(root.UnreferencedVariableSymbolsAdded)))
		for _, s := range root.UnreferencedVariableSymbolsAdded {
			rw.printf(1, "'%s'", s.Name)
		}
	}
}

// beginCanonical implements spec.md §4.7's currently-reporting/reported-once
// cycle-bounding mechanism. Returns false (caller should return
// immediately after printing the short message) when this canonical is
// already being or has already been reported.
func (rw *reportWriter) beginCanonical(depth int, n diff.Node) bool {
	can := n.Canonical()
	if can == nil {
		can = n
	}
	if rw.ctx.CurrentlyReporting(can) {
		rw.printf(depth, "details are being reported")
		return false
	}
	if rw.ctx.ReportedOnce(can) {
		rw.printf(depth, "details were reported earlier")
		return false
	}
	rw.ctx.SetCurrentlyReporting(can, true)
	return true
}

func (rw *reportWriter) endCanonical(n diff.Node) {
	can := n.Canonical()
	if can == nil {
		can = n
	}
	rw.ctx.SetCurrentlyReporting(can, false)
	rw.ctx.SetReportedOnce(can, true)
}

func (rw *reportWriter) writeFunctionDecl(depth int, fd *diff.FunctionDeclDiff) {
	if !rw.beginCanonical(depth, fd) {
		return
	}
	defer rw.endCanonical(fd)

	a, _ := fd.First().(*ir.FunctionDecl)
	b, _ := fd.Second().(*ir.FunctionDecl)
	rw.printf(depth, "'%s' has some changes:", fd.First().QualifiedName())

	if a != nil && b != nil {
		if a.QualifiedName() != b.QualifiedName() && rw.ctx.AllowedCategories.Has(category.HarmlessDeclName) {
			rw.printf(depth+1, "name changed from '%s' to '%s'", a.QualifiedName(), b.QualifiedName())
		}
		if a.VTableOffset != b.VTableOffset {
			rw.printf(depth+1, "vtable offset changed from %d to %d", a.VTableOffset, b.VTableOffset)
		}
		if a.DeclaredVirtual != b.DeclaredVirtual {
			rw.printf(depth+1, "'declared virtual' changed from '%v' to '%v'", a.DeclaredVirtual, b.DeclaredVirtual)
		}
		if a.Inline != b.Inline {
			rw.printf(depth+1, "'inline' changed from '%v' to '%v'", a.Inline, b.Inline)
		}
	}
	if ft, ok := fd.Type.(*diff.FunctionTypeDiff); ok {
		rw.writeFunctionType(depth+1, ft)
	}
}

func (rw *reportWriter) writeFunctionType(depth int, ft *diff.FunctionTypeDiff) {
	if toBeReported(rw.ctx, ft.Return) {
		rw.printf(depth, "return type changed:")
		rw.writeTypeDetails(depth+1, ft.Return)
	}

	var names []string
	for name := range ft.SubTypeChangedParameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rw.printf(depth, "parameter %s type changed:", name)
		rw.writeTypeDetails(depth+1, ft.SubTypeChangedParameters[name])
	}

	var indices []int
	for idx := range ft.ChangedParameters {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		rw.printf(depth, "parameter %d changed:", idx)
		rw.writeTypeDetails(depth+1, ft.ChangedParameters[idx])
	}

	if len(ft.RemovedParameters) > 0 {
		rw.printf(depth, "%d parameter%s removed:", len(ft.RemovedParameters), plural(len(ft.RemovedParameters)))
		for _, key := range sortedKeys(ft.RemovedParameters) {
			rw.printf(depth+1, "'%s'", key)
		}
	}
	if len(ft.AddedParameters) > 0 {
		rw.printf(depth, "%d parameter%s added:", len(ft.AddedParameters), plural(len(ft.AddedParameters)))
		for _, key := range sortedKeys(ft.AddedParameters) {
			rw.printf(depth+1, "'%s'", key)
		}
	}
}

func sortedKeys(m map[string]*ir.FunctionParameter) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeTypeDetails renders size/alignment/name changes common to most
// type diff kinds (spec.md §4.7, "Size and alignment" / "Name changes").
func (rw *reportWriter) writeTypeDetails(depth int, n diff.Node) {
	if !rw.beginCanonical(depth, n) {
		return
	}
	defer rw.endCanonical(n)

	switch d := n.(type) {
	case *diff.ClassDiff:
		rw.writeClass(depth, d)
	case *diff.EnumDiff:
		rw.writeEnum(depth, d)
	case *diff.ArrayDiff:
		rw.writeArray(depth, d)
	case *diff.DistinctDiff:
		rw.printf(depth, "type changed from '%s' to '%s'", n.First().QualifiedName(), n.Second().QualifiedName())
	default:
		if n.First() != nil && n.Second() != nil && n.First().QualifiedName() != n.Second().QualifiedName() {
			rw.printf(depth, "name changed from '%s' to '%s'", n.First().QualifiedName(), n.Second().QualifiedName())
		}
		for _, child := range n.Children() {
			if toBeReported(rw.ctx, child) {
				rw.writeTypeDetails(depth, child)
			}
		}
	}
}

func (rw *reportWriter) writeArray(depth int, d *diff.ArrayDiff) {
	a, _ := d.First().(*ir.ArrayType)
	b, _ := d.Second().(*ir.ArrayType)
	if a != nil && b != nil {
		for i := 0; i < len(a.Dimensions) || i < len(b.Dimensions); i++ {
			oldLen, newLen := "infinity", "infinity"
			if i < len(a.Dimensions) && a.Dimensions[i].Length >= 0 {
				oldLen = fmt.Sprintf("%d", a.Dimensions[i].Length)
			}
			if i < len(b.Dimensions) && b.Dimensions[i].Length >= 0 {
				newLen = fmt.Sprintf("%d", b.Dimensions[i].Length)
			}
			if oldLen != newLen {
				rw.printf(depth, "array type size changed from %s to %s", oldLen, newLen)
			}
		}
	}
	if toBeReported(rw.ctx, d.Element) {
		rw.writeTypeDetails(depth, d.Element)
	}
}

func (rw *reportWriter) writeEnum(depth int, d *diff.EnumDiff) {
	if d.First().QualifiedName() != d.Second().QualifiedName() && rw.ctx.AllowedCategories.Has(category.HarmlessDeclName) {
		rw.printf(depth, "name changed from '%s' to '%s'", d.First().QualifiedName(), d.Second().QualifiedName())
	}
	if len(d.DeletedEnumerators) > 0 {
		rw.printf(depth, "%d enumerator deletion%s:", len(d.DeletedEnumerators), plural(len(d.DeletedEnumerators)))
		for _, e := range d.DeletedEnumerators {
			rw.printf(depth+1, "'%s' value '%d'", e.Name, e.Value)
		}
	}
	if len(d.InsertedEnumerators) > 0 {
		rw.printf(depth, "%d enumerator insertion%s:", len(d.InsertedEnumerators), plural(len(d.InsertedEnumerators)))
		for _, e := range d.InsertedEnumerators {
			rw.printf(depth+1, "'%s' value '%d'", e.Name, e.Value)
		}
	}
	if len(d.ChangedEnumerators) > 0 {
		rw.printf(depth, "%d enumerator change%s:", len(d.ChangedEnumerators), plural(len(d.ChangedEnumerators)))
		for _, c := range d.ChangedEnumerators {
			rw.printf(depth+1, "'%s::%s' from value '%d' to '%d'", d.First().QualifiedName(), c.Name, c.OldValue, c.NewValue)
		}
	}
}

func (rw *reportWriter) writeClass(depth int, d *diff.ClassDiff) {
	a, _ := d.First().(*ir.Class)
	b, _ := d.Second().(*ir.Class)
	if a != nil && b != nil && a.QualifiedName() != b.QualifiedName() && rw.ctx.AllowedCategories.Has(category.HarmlessDeclName) {
		rw.printf(depth, "name changed from '%s' to '%s'", a.QualifiedName(), b.QualifiedName())
	}
	if a != nil && b != nil && (a.BitSize != b.BitSize || a.BitAlign != b.BitAlign) {
		if a.BitSize != b.BitSize {
			rw.printf(depth, "type size changed from %d to %d bits", a.BitSize, b.BitSize)
		}
		if a.BitAlign != b.BitAlign {
			rw.printf(depth, "type alignment changed from %d to %d bits", a.BitAlign, b.BitAlign)
		}
	}

	writeBucket(rw, depth, "base class", len(d.DeletedBases), len(d.InsertedBases), len(d.ChangedBases))
	for _, c := range d.ChangedBases {
		if toBeReported(rw.ctx, c) {
			rw.writeTypeDetails(depth+1, c)
		}
	}

	if n := len(d.ChangedDataMembers); n > 0 {
		rw.printf(depth, "%d data member change%s:", n, plural(n))
		for _, c := range d.ChangedDataMembers {
			rw.writeDataMemberChange(depth+1, c)
		}
	}
	if n := len(d.DeletedDataMembers); n > 0 {
		rw.printf(depth, "%d data member deletion%s:", n, plural(n))
		for _, m := range d.DeletedDataMembers {
			rw.printf(depth+1, "'%s'", m.Name)
		}
	}
	if n := len(d.InsertedDataMembers); n > 0 {
		rw.printf(depth, "%d data member insertion%s:", n, plural(n))
		for _, m := range d.InsertedDataMembers {
			rw.printf(depth+1, "'%s'", m.Name)
		}
	}

	writeBucket(rw, depth, "member function", len(d.DeletedMemberFunctions), len(d.InsertedMemberFunctions), len(d.ChangedMemberFunctions))
	for _, c := range d.ChangedMemberFunctions {
		rw.writeMemberFunctionChange(depth+1, c)
	}

	writeBucket(rw, depth, "member type", len(d.DeletedMemberTypes), len(d.InsertedMemberTypes), len(d.ChangedMemberTypes))
	for _, c := range d.ChangedMemberTypes {
		if toBeReported(rw.ctx, c) {
			rw.writeTypeDetails(depth+1, c)
		}
	}
}

func writeBucket(rw *reportWriter, depth int, label string, deleted, inserted, changed int) {
	if deleted == 0 && inserted == 0 && changed == 0 {
		return
	}
	rw.printf(depth, "%d %s deletion%s, %d %s insertion%s, %d %s change%s:",
		deleted, label, plural(deleted), inserted, label, plural(inserted), changed, label, plural(changed))
}

func (rw *reportWriter) writeDataMemberChange(depth int, c diff.DataMemberChange) {
	if c.OldName != c.NewName {
		rw.printf(depth, "'%s' renamed to '%s'", c.OldName, c.NewName)
	}
	if c.OldOffset != c.NewOffset {
		tag := c.OldName
		if tag == "" {
			tag = c.NewName
		}
		label := "offset"
		if c.ReplacedAtOffset {
			label = "offset (replaced at offset)"
		}
		rw.printf(depth, "'%s' %s changed from %d to %d (in bits)", tag, label, c.OldOffset, c.NewOffset)
	}
	if c.AccessChanged {
		rw.printf(depth, "'%s' access changed from '%s' to '%s'", c.NewName, c.OldAccess, c.NewAccess)
	}
	if c.StaticChanged {
		rw.printf(depth, "'%s' changed from %s to %s", c.NewName, staticLabel(c.OldStatic), staticLabel(c.NewStatic))
	}
	if toBeReported(rw.ctx, c.TypeDiff) {
		rw.writeTypeDetails(depth, c.TypeDiff)
	}
}

func staticLabel(isStatic bool) string {
	if isStatic {
		return "static"
	}
	return "non-static"
}

func (rw *reportWriter) writeMemberFunctionChange(depth int, c diff.MemberFunctionChange) {
	if c.VirtualChanged {
		rw.printf(depth, "'virtual' changed from '%v' to '%v'", c.OldVirtual, c.NewVirtual)
	}
	if c.VTableOffsetChanged {
		rw.printf(depth, "vtable offset changed from %d to %d", c.OldVTableOffset, c.NewVTableOffset)
	}
	if c.AccessChanged {
		rw.printf(depth, "access changed from '%s' to '%s'", c.OldAccess, c.NewAccess)
	}
	if toBeReported(rw.ctx, c.FunctionDiff) {
		if fd, ok := c.FunctionDiff.(*diff.FunctionDeclDiff); ok {
			rw.writeFunctionDecl(depth, fd)
		}
	}
}

func (rw *reportWriter) writeVariable(depth int, vd *diff.VariableDiff) {
	if !rw.beginCanonical(depth, vd) {
		return
	}
	defer rw.endCanonical(vd)

	rw.printf(depth, "'%s' was changed:", vd.First().QualifiedName())
	if vd.First().QualifiedName() != vd.Second().QualifiedName() && rw.ctx.AllowedCategories.Has(category.HarmlessDeclName) {
		rw.printf(depth+1, "name changed from '%s' to '%s'", vd.First().QualifiedName(), vd.Second().QualifiedName())
	}
	if toBeReported(rw.ctx, vd.Type) {
		rw.writeTypeDetails(depth+1, vd.Type)
	}
}
