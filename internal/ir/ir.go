// Package ir is the borrowed-reference ABI artifact model the comparison
// engine operates over. It stands in for the reader and in-memory IR that
// spec.md treats as external collaborators (see SPEC_FULL.md §9, "Why
// internal/ir exists at all"): it is intentionally the smallest set of Go
// types that let internal/pairing and internal/diff exercise every kind in
// the spec's dispatch table, not a production DWARF/BTF reader.
//
// Every subject is owned by whatever constructed the two corpora; this
// package only describes shapes, never a lifecycle. Two subjects are
// comparable only if they share an Environment (see Environment).
package ir

// Environment is the shared reader session two subjects must come from to
// be compared. It has no fields of interest; only its identity matters.
type Environment struct {
	Name string
}

// Kind is the runtime tag of a Subject, used by the pairing engine's
// dispatcher (spec.md §4.1).
type Kind int

const (
	KindBasic Kind = iota
	KindPointer
	KindReference
	KindQualified
	KindArray
	KindTypedef
	KindEnum
	KindFunctionType
	KindFunctionParameter
	KindClass
	KindUnion
	KindBaseSpecifier
	KindScope
	KindTranslationUnit
	KindVariable
	KindFunctionDecl
	KindNamespace
	KindCorpus
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic-type"
	case KindPointer:
		return "pointer-type"
	case KindReference:
		return "reference-type"
	case KindQualified:
		return "qualified-type"
	case KindArray:
		return "array-type"
	case KindTypedef:
		return "typedef"
	case KindEnum:
		return "enum"
	case KindFunctionType:
		return "function-type"
	case KindFunctionParameter:
		return "function-parameter"
	case KindClass:
		return "class"
	case KindUnion:
		return "union"
	case KindBaseSpecifier:
		return "base-specifier"
	case KindScope:
		return "scope"
	case KindTranslationUnit:
		return "translation-unit"
	case KindVariable:
		return "variable"
	case KindFunctionDecl:
		return "function-decl"
	case KindNamespace:
		return "namespace"
	case KindCorpus:
		return "corpus"
	default:
		return "unknown"
	}
}

// Access is a class/union member's visibility.
type Access int

const (
	Public Access = iota
	Protected
	Private
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// Subject is any ABI artifact that can appear on either side of a diff
// node (spec.md §3, "Subject"). Implementations are pointer types so that
// a (first, second) pair of Subject interface values can key a map by
// pointer identity — the canonicalization cache's lookup key.
type Subject interface {
	Kind() Kind
	QualifiedName() string
	SymbolID() string
	Env() *Environment
}

// base is embedded by every concrete subject to supply the common fields.
type base struct {
	Name string
	Sym  string
	E    *Environment
}

func (b *base) QualifiedName() string { return b.Name }
func (b *base) SymbolID() string      { return b.Sym }
func (b *base) Env() *Environment     { return b.E }

// NewBase constructs the embeddable common subject fields.
func NewBase(env *Environment, qualifiedName, symbolID string) base {
	return base{Name: qualifiedName, Sym: symbolID, E: env}
}

// BasicType is a fundamental type (int, char, ...).
type BasicType struct {
	base
	BitSize int
}

func (*BasicType) Kind() Kind { return KindBasic }

// NewBasicType builds a basic type subject.
func NewBasicType(env *Environment, name string, bitSize int) *BasicType {
	return &BasicType{base: NewBase(env, name, ""), BitSize: bitSize}
}

// PointerType points at Underlying.
type PointerType struct {
	base
	Underlying        Subject
	BitSize, BitAlign int
}

func (*PointerType) Kind() Kind { return KindPointer }

// ReferenceType refers to Underlying.
type ReferenceType struct {
	base
	Underlying        Subject
	BitSize, BitAlign int
	RValue            bool
}

func (*ReferenceType) Kind() Kind { return KindReference }

// QualifiedType adds cv-qualifiers to Underlying.
type QualifiedType struct {
	base
	Underlying                    Subject
	Const, Volatile, Restrict     bool
}

func (*QualifiedType) Kind() Kind { return KindQualified }

// Subrange is one dimension of an array; Length < 0 means infinite
// (spec.md §4.7, "infinity" printed for infinite subranges).
type Subrange struct {
	Length int64
}

// ArrayType is an array of Element, with one Subrange per dimension.
type ArrayType struct {
	base
	Element    Subject
	Dimensions []Subrange
}

func (*ArrayType) Kind() Kind { return KindArray }

// Typedef names Underlying.
type Typedef struct {
	base
	Underlying Subject
}

func (*Typedef) Kind() Kind { return KindTypedef }

// EnumValue is one enumerator of an Enum.
type EnumValue struct {
	Name  string
	Value int64
}

// Enum is an enumeration type.
type Enum struct {
	base
	Underlying        Subject
	Values            []EnumValue
	BitSize, BitAlign int
}

func (*Enum) Kind() Kind { return KindEnum }

// FunctionParameter is one parameter of a FunctionType, at a positional
// Index (the implicit "this" parameter, if any, is not represented here —
// spec.md §4.1 has the pairing engine skip it explicitly).
type FunctionParameter struct {
	base
	Type     Subject
	Index    int
	Variadic bool
}

func (*FunctionParameter) Kind() Kind { return KindFunctionParameter }

// FunctionType is a function signature.
type FunctionType struct {
	base
	Return     Subject
	Parameters []*FunctionParameter
}

func (*FunctionType) Kind() Kind { return KindFunctionType }

// BaseSpecifier is one base class of a Class.
type BaseSpecifier struct {
	base
	ClassType *Class
	Offset    int64
	IsVirtual bool
	Access    Access
}

func (*BaseSpecifier) Kind() Kind { return KindBaseSpecifier }

// DataMember is one non-function member of a Class/Union.
type DataMember struct {
	Name          string
	Type          Subject
	Offset        int64 // bit offset; meaningless for unions
	Static        bool
	Access        Access
}

// MemberFunction is one member function of a Class/Union.
type MemberFunction struct {
	Function     *FunctionDecl
	Virtual      bool
	VTableOffset int64
	Access       Access
}

// MemberType is a nested type declared inside a Class/Union (spec.md §9,
// "Open questions": kept in the class-diff buckets, listed by the reporter
// only when non-empty).
type MemberType struct {
	Name   string
	Type   Subject
	Access Access
}

// Class is a class or union type. IsUnion distinguishes the two; offsets
// are meaningless within a union (spec.md §4.7).
type Class struct {
	base
	Bases             []*BaseSpecifier
	DataMembers       []*DataMember
	MemberFunctions   []*MemberFunction
	MemberTypes       []*MemberType
	IsUnion           bool
	IsDeclarationOnly bool
	BitSize, BitAlign int
}

func (c *Class) Kind() Kind {
	if c.IsUnion {
		return KindUnion
	}
	return KindClass
}

// Scope is a lexical scope: a set of declarations and nested types.
type Scope struct {
	base
	Decls []Subject
	Types []Subject
}

func (*Scope) Kind() Kind { return KindScope }

// TranslationUnit is one compiled source file's contribution to a Corpus.
type TranslationUnit struct {
	base
	Global *Scope
}

func (*TranslationUnit) Kind() Kind { return KindTranslationUnit }

// Symbol is an ELF-level symbol, possibly grouped into an alias set and
// possibly versioned.
type Symbol struct {
	Name      string
	Version   string
	IsDefault bool
	Aliases   []string
}

// Variable is a global variable declaration.
type Variable struct {
	base
	Type   Subject
	Symbol *Symbol
}

func (*Variable) Kind() Kind { return KindVariable }

// FunctionDecl is a function declaration.
type FunctionDecl struct {
	base
	Type            *FunctionType
	Symbol          *Symbol
	Inline          bool
	DeclaredVirtual bool
	VTableOffset    int64
	LinkageName     string
}

func (*FunctionDecl) Kind() Kind { return KindFunctionDecl }

// Namespace groups a Scope under a name.
type Namespace struct {
	base
	Scope *Scope
}

func (*Namespace) Kind() Kind { return KindNamespace }

// Corpus is the root of one side of a comparison: all public functions,
// variables and symbols of one binary (spec.md §6, "Inputs the core
// consumes").
type Corpus struct {
	base
	SOName                      string
	Architecture                string
	Functions                   []*FunctionDecl
	Variables                   []*Variable
	UnreferencedFunctionSymbols []*Symbol
	UnreferencedVariableSymbols []*Symbol
}

func (*Corpus) Kind() Kind { return KindCorpus }
