package diff

import "github.com/abigraph/abidiff/internal/ir"

// DistinctDiff couples two subjects of different runtime kinds (spec.md
// §3, "distinct"). Compatible is the optional child comparing the
// typedef-stripped leaves, present only when stripping typedefs from both
// sides makes them share a kind.
type DistinctDiff struct {
	Common
	Compatible Node
}

func NewDistinctDiff(first, second ir.Subject) *DistinctDiff {
	d := &DistinctDiff{Common: NewCommon("distinct", first, second)}
	d.BindSelf(d)
	return d
}

// PointerDiff couples two pointer types; Underlying is the pointee diff.
type PointerDiff struct {
	Common
	Underlying Node
}

func NewPointerDiff(first, second ir.Subject) *PointerDiff {
	d := &PointerDiff{Common: NewCommon("pointer", first, second)}
	d.BindSelf(d)
	return d
}

// ReferenceDiff couples two reference types; Underlying is the referent diff.
type ReferenceDiff struct {
	Common
	Underlying Node
}

func NewReferenceDiff(first, second ir.Subject) *ReferenceDiff {
	d := &ReferenceDiff{Common: NewCommon("reference", first, second)}
	d.BindSelf(d)
	return d
}

// QualifiedDiff couples two cv-qualified types; Underlying is the leaf
// diff below the qualifiers.
type QualifiedDiff struct {
	Common
	Underlying Node
}

func NewQualifiedDiff(first, second ir.Subject) *QualifiedDiff {
	d := &QualifiedDiff{Common: NewCommon("qualified-type", first, second)}
	d.BindSelf(d)
	return d
}

// ArrayDiff couples two array types; Element is the element-type diff.
type ArrayDiff struct {
	Common
	Element Node
}

func NewArrayDiff(first, second ir.Subject) *ArrayDiff {
	d := &ArrayDiff{Common: NewCommon("array", first, second)}
	d.BindSelf(d)
	return d
}

// TypedefDiff couples two typedefs; Underlying is the aliased-type diff.
type TypedefDiff struct {
	Common
	Underlying Node
}

func NewTypedefDiff(first, second ir.Subject) *TypedefDiff {
	d := &TypedefDiff{Common: NewCommon("typedef", first, second)}
	d.BindSelf(d)
	return d
}

// EnumeratorValueChange is one enumerator present on both sides whose
// value changed (spec.md §4.1, enumerators paired by name).
type EnumeratorValueChange struct {
	Name     string
	OldValue int64
	NewValue int64
}

// EnumDiff couples two enums.
type EnumDiff struct {
	Common
	Underlying        Node
	DeletedEnumerators  []ir.EnumValue
	InsertedEnumerators []ir.EnumValue
	ChangedEnumerators  []EnumeratorValueChange
}

func NewEnumDiff(first, second ir.Subject) *EnumDiff {
	d := &EnumDiff{Common: NewCommon("enum", first, second)}
	d.BindSelf(d)
	return d
}

// FunctionParameterDiff couples two parameters at the same positional index.
type FunctionParameterDiff struct {
	Common
	Index int
	Type  Node
}

func NewFunctionParameterDiff(first, second ir.Subject, index int) *FunctionParameterDiff {
	d := &FunctionParameterDiff{Common: NewCommon("function-parameter", first, second), Index: index}
	d.BindSelf(d)
	return d
}

// FunctionTypeDiff couples two function types (spec.md §4.1: edit-script
// over parameters, skipping the implicit this; promotion of aligned
// deletion/insertion pairs into changed/sub-type-changed parameters).
type FunctionTypeDiff struct {
	Common
	Return Node

	// ChangedParameters are deletion/insertion pairs at the same
	// positional index whose name AND type differ — keyed by index.
	ChangedParameters map[int]Node

	// SubTypeChangedParameters are deletion/insertion pairs with the same
	// name but a different type — keyed by name.
	SubTypeChangedParameters map[string]Node

	// RemovedParameters/AddedParameters are the deletions/insertions left
	// over once the promotions above have been applied, keyed by name.
	RemovedParameters map[string]*ir.FunctionParameter
	AddedParameters   map[string]*ir.FunctionParameter
}

func NewFunctionTypeDiff(first, second ir.Subject) *FunctionTypeDiff {
	d := &FunctionTypeDiff{
		Common:                   NewCommon("function-type", first, second),
		ChangedParameters:        map[int]Node{},
		SubTypeChangedParameters: map[string]Node{},
		RemovedParameters:        map[string]*ir.FunctionParameter{},
		AddedParameters:          map[string]*ir.FunctionParameter{},
	}
	d.BindSelf(d)
	return d
}

// FunctionDeclDiff couples two function declarations.
type FunctionDeclDiff struct {
	Common
	Type Node
}

func NewFunctionDeclDiff(first, second ir.Subject) *FunctionDeclDiff {
	d := &FunctionDeclDiff{Common: NewCommon("function-decl", first, second)}
	d.BindSelf(d)
	return d
}

// VariableDiff couples two variables.
type VariableDiff struct {
	Common
	Type Node
}

func NewVariableDiff(first, second ir.Subject) *VariableDiff {
	d := &VariableDiff{Common: NewCommon("variable", first, second)}
	d.BindSelf(d)
	return d
}

// BaseSpecifierDiff couples two base class specifiers.
type BaseSpecifierDiff struct {
	Common
	ClassDiff Node
}

func NewBaseSpecifierDiff(first, second ir.Subject) *BaseSpecifierDiff {
	d := &BaseSpecifierDiff{Common: NewCommon("base-specifier", first, second)}
	d.BindSelf(d)
	return d
}

// DataMemberChange is one data member present (by name, or by offset when
// the name also changed) on both sides with a detected difference.
type DataMemberChange struct {
	OldName, NewName     string
	OldOffset, NewOffset int64
	ReplacedAtOffset     bool // promoted via spec.md §4.1's offset tie-break
	TypeDiff             Node
	AccessChanged        bool
	OldAccess, NewAccess ir.Access
	StaticChanged        bool
	OldStatic, NewStatic bool
}

// MemberFunctionChange is one member function present on both sides with a
// detected difference (signature, virtual-ness, vtable offset, access).
type MemberFunctionChange struct {
	FunctionDiff   Node
	VirtualChanged bool
	OldVirtual, NewVirtual bool
	VTableOffsetChanged    bool
	OldVTableOffset, NewVTableOffset int64
	AccessChanged  bool
	OldAccess, NewAccess ir.Access
}

// ClassDiff couples two class/union types (spec.md §3, "class-or-union").
type ClassDiff struct {
	Common
	IsUnion bool

	DeletedBases  []*ir.BaseSpecifier
	InsertedBases []*ir.BaseSpecifier
	ChangedBases  []Node

	DeletedDataMembers  []*ir.DataMember
	InsertedDataMembers []*ir.DataMember
	ChangedDataMembers  []DataMemberChange

	DeletedMemberFunctions  []*ir.MemberFunction
	InsertedMemberFunctions []*ir.MemberFunction
	ChangedMemberFunctions  []MemberFunctionChange

	DeletedMemberTypes  []*ir.MemberType
	InsertedMemberTypes []*ir.MemberType
	ChangedMemberTypes  []Node
}

func NewClassDiff(first, second ir.Subject, isUnion bool) *ClassDiff {
	d := &ClassDiff{Common: NewCommon("class-or-union", first, second), IsUnion: isUnion}
	d.BindSelf(d)
	return d
}

// ScopeDiff couples two lexical scopes.
type ScopeDiff struct {
	Common
	AddedDecls, RemovedDecls []ir.Subject
	ChangedDecls             []Node
	AddedTypes, RemovedTypes []ir.Subject
	ChangedTypes             []Node
}

func NewScopeDiff(first, second ir.Subject) *ScopeDiff {
	d := &ScopeDiff{Common: NewCommon("scope", first, second)}
	d.BindSelf(d)
	return d
}

// TranslationUnitDiff couples two translation units.
type TranslationUnitDiff struct {
	Common
	Global Node
}

func NewTranslationUnitDiff(first, second ir.Subject) *TranslationUnitDiff {
	d := &TranslationUnitDiff{Common: NewCommon("translation-unit", first, second)}
	d.BindSelf(d)
	return d
}

// Stats is the diff-stats record of spec.md §6: gross and net counts for
// each bucket of the corpus diff. Net = gross - filtered out.
type Stats struct {
	NumFuncRemoved, NumFuncAdded, NumFuncChanged             int
	NumRemovedFuncFilteredOut, NumAddedFuncFilteredOut       int
	NumChangedFuncFilteredOut                                int
	NumVarRemoved, NumVarAdded, NumVarChanged                int
	NumRemovedVarFilteredOut, NumAddedVarFilteredOut         int
	NumChangedVarFilteredOut                                 int
	NumFuncSymsUnreferenced, NumVarSymsUnreferenced          int
}

// NetFuncRemoved etc. implement the invariant of spec.md §8: net ==
// gross - filtered.
func (s Stats) NetFuncRemoved() int { return s.NumFuncRemoved - s.NumRemovedFuncFilteredOut }
func (s Stats) NetFuncAdded() int   { return s.NumFuncAdded - s.NumAddedFuncFilteredOut }
func (s Stats) NetFuncChanged() int { return s.NumFuncChanged - s.NumChangedFuncFilteredOut }
func (s Stats) NetVarRemoved() int  { return s.NumVarRemoved - s.NumRemovedVarFilteredOut }
func (s Stats) NetVarAdded() int    { return s.NumVarAdded - s.NumAddedVarFilteredOut }
func (s Stats) NetVarChanged() int  { return s.NumVarChanged - s.NumChangedVarFilteredOut }

// CorpusDiff couples two corpora — the root of every comparison.
type CorpusDiff struct {
	Common

	SONameChanged      bool
	OldSOName, NewSOName string
	ArchChanged        bool
	OldArch, NewArch   string

	AddedFunctions, RemovedFunctions []*ir.FunctionDecl
	ChangedFunctions                []Node

	AddedVariables, RemovedVariables []*ir.Variable
	ChangedVariables                []Node

	UnreferencedFunctionSymbolsAdded, UnreferencedFunctionSymbolsRemoved []*ir.Symbol
	UnreferencedVariableSymbolsAdded, UnreferencedVariableSymbolsRemoved []*ir.Symbol

	Stats Stats
}

func NewCorpusDiff(first, second ir.Subject) *CorpusDiff {
	d := &CorpusDiff{Common: NewCommon("corpus", first, second)}
	d.BindSelf(d)
	return d
}

// HasNetChanges reports whether any function or variable bucket has a
// non-zero net count (gross minus filtered out), or the SONAME or
// architecture changed.
func (c *CorpusDiff) HasNetChanges() bool {
	return c.Stats.NetFuncRemoved() > 0 || c.Stats.NetFuncAdded() > 0 || c.Stats.NetFuncChanged() > 0 ||
		c.Stats.NetVarRemoved() > 0 || c.Stats.NetVarAdded() > 0 || c.Stats.NetVarChanged() > 0 ||
		c.SONameChanged || c.ArchChanged
}

// HasNetSubtypeChanges reports whether any function or variable changed
// type (as opposed to purely being added/removed), net of filtering.
func (c *CorpusDiff) HasNetSubtypeChanges() bool {
	return c.Stats.NetFuncChanged() > 0 || c.Stats.NetVarChanged() > 0
}

// HasIncompatibleChanges implements spec.md §6's ABI-incompatibility
// predicate: SONAME change OR net removal OR a virtual-offset change that
// survived filtering OR symbol removal. vtableOffsetChangedAndVisible is
// supplied by the caller (internal/reporter computes it while walking
// ChangedFunctions, since "after filtering" requires the category mask).
func (c *CorpusDiff) HasIncompatibleChanges(vtableOffsetChangedAndVisible bool) bool {
	return c.SONameChanged ||
		c.Stats.NetFuncRemoved() > 0 || c.Stats.NetVarRemoved() > 0 ||
		vtableOffsetChangedAndVisible ||
		len(c.UnreferencedFunctionSymbolsRemoved) > 0 || len(c.UnreferencedVariableSymbolsRemoved) > 0
}
