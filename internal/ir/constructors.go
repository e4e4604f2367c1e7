package ir

// NewPointerType builds a pointer-to-Underlying subject.
func NewPointerType(env *Environment, name string, underlying Subject, bitSize, bitAlign int) *PointerType {
	return &PointerType{base: NewBase(env, name, ""), Underlying: underlying, BitSize: bitSize, BitAlign: bitAlign}
}

// NewReferenceType builds a reference-to-Underlying subject.
func NewReferenceType(env *Environment, name string, underlying Subject, bitSize, bitAlign int, rvalue bool) *ReferenceType {
	return &ReferenceType{base: NewBase(env, name, ""), Underlying: underlying, BitSize: bitSize, BitAlign: bitAlign, RValue: rvalue}
}

// NewQualifiedType builds a cv-qualified Underlying subject.
func NewQualifiedType(env *Environment, name string, underlying Subject, isConst, isVolatile, isRestrict bool) *QualifiedType {
	return &QualifiedType{base: NewBase(env, name, ""), Underlying: underlying, Const: isConst, Volatile: isVolatile, Restrict: isRestrict}
}

// NewArrayType builds an array-of-Element subject.
func NewArrayType(env *Environment, name string, element Subject, dims ...int64) *ArrayType {
	subranges := make([]Subrange, len(dims))
	for i, d := range dims {
		subranges[i] = Subrange{Length: d}
	}
	return &ArrayType{base: NewBase(env, name, ""), Element: element, Dimensions: subranges}
}

// NewTypedef builds a typedef naming Underlying.
func NewTypedef(env *Environment, name string, underlying Subject) *Typedef {
	return &Typedef{base: NewBase(env, name, ""), Underlying: underlying}
}

// NewEnum builds an enum subject.
func NewEnum(env *Environment, name string, underlying Subject, bitSize, bitAlign int, values ...EnumValue) *Enum {
	return &Enum{base: NewBase(env, name, ""), Underlying: underlying, Values: values, BitSize: bitSize, BitAlign: bitAlign}
}

// NewFunctionParameter builds a positional function parameter.
func NewFunctionParameter(env *Environment, name string, typ Subject, index int, variadic bool) *FunctionParameter {
	return &FunctionParameter{base: NewBase(env, name, ""), Type: typ, Index: index, Variadic: variadic}
}

// NewFunctionType builds a function signature subject.
func NewFunctionType(env *Environment, name string, ret Subject, params ...*FunctionParameter) *FunctionType {
	return &FunctionType{base: NewBase(env, name, ""), Return: ret, Parameters: params}
}

// NewClass builds a class (or, with isUnion, a union) subject.
func NewClass(env *Environment, name string, isUnion bool, bitSize, bitAlign int) *Class {
	return &Class{base: NewBase(env, name, ""), IsUnion: isUnion, BitSize: bitSize, BitAlign: bitAlign}
}

// NewScope builds an (initially empty) scope subject.
func NewScope(env *Environment, name string) *Scope {
	return &Scope{base: NewBase(env, name, "")}
}

// NewTranslationUnit builds a translation-unit subject over a global scope.
func NewTranslationUnit(env *Environment, name string, global *Scope) *TranslationUnit {
	return &TranslationUnit{base: NewBase(env, name, ""), Global: global}
}

// NewVariable builds a global variable subject.
func NewVariable(env *Environment, name string, typ Subject, sym *Symbol) *Variable {
	return &Variable{base: NewBase(env, name, ""), Type: typ, Symbol: sym}
}

// NewFunctionDecl builds a function declaration subject.
func NewFunctionDecl(env *Environment, name string, typ *FunctionType, sym *Symbol) *FunctionDecl {
	return &FunctionDecl{base: NewBase(env, name, ""), Type: typ, Symbol: sym, LinkageName: name}
}

// NewNamespace builds a namespace subject around a scope.
func NewNamespace(env *Environment, name string, scope *Scope) *Namespace {
	return &Namespace{base: NewBase(env, name, ""), Scope: scope}
}

// NewCorpus builds an (initially empty) corpus subject.
func NewCorpus(env *Environment, soname, arch string) *Corpus {
	return &Corpus{base: NewBase(env, soname, ""), SOName: soname, Architecture: arch}
}
