package ir

import (
	"encoding/json"
	"io"
)

// jsonCorpus is the on-disk shape LoadCorpusJSON reads. It only covers the
// function/variable surface internal/pairing's corpus-level comparison
// needs; a real reader builds richer ir.Subject graphs directly rather
// than through this format. This exists so cmd/abidiff has something
// concrete to load without a DWARF/BTF reader (SPEC_FULL.md §1).
type jsonCorpus struct {
	SOName       string            `json:"soname"`
	Architecture string            `json:"architecture"`
	Functions    []jsonFunctionDecl `json:"functions"`
	Variables    []jsonVariable     `json:"variables"`
}

type jsonFunctionDecl struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	SymbolVersion   string `json:"symbol_version,omitempty"`
	ReturnType      string `json:"return_type"`
	Parameters      []jsonParam `json:"parameters,omitempty"`
	Inline          bool   `json:"inline,omitempty"`
	DeclaredVirtual bool   `json:"declared_virtual,omitempty"`
	VTableOffset    int64  `json:"vtable_offset,omitempty"`
}

type jsonParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonVariable struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
}

// LoadCorpusJSON decodes a jsonCorpus document from r into a Corpus,
// building one BasicType subject per distinct type name encountered (types
// equal by name compare equal, which is enough for the function/variable
// level surface this format describes).
func LoadCorpusJSON(env *Environment, r io.Reader) (*Corpus, error) {
	var doc jsonCorpus
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	types := map[string]*BasicType{}
	typeOf := func(name string) *BasicType {
		if t, ok := types[name]; ok {
			return t
		}
		t := NewBasicType(env, name, 0)
		types[name] = t
		return t
	}

	corpus := NewCorpus(env, doc.SOName, doc.Architecture)
	for _, f := range doc.Functions {
		params := make([]*FunctionParameter, len(f.Parameters))
		for i, p := range f.Parameters {
			params[i] = NewFunctionParameter(env, p.Name, typeOf(p.Type), i, false)
		}
		fnType := NewFunctionType(env, f.Name+"-type", typeOf(f.ReturnType), params...)
		sym := &Symbol{Name: f.Symbol, Version: f.SymbolVersion, IsDefault: f.SymbolVersion == ""}
		decl := NewFunctionDecl(env, f.Name, fnType, sym)
		decl.Inline = f.Inline
		decl.DeclaredVirtual = f.DeclaredVirtual
		decl.VTableOffset = f.VTableOffset
		corpus.Functions = append(corpus.Functions, decl)
	}
	for _, v := range doc.Variables {
		sym := &Symbol{Name: v.Symbol, IsDefault: true}
		corpus.Variables = append(corpus.Variables, NewVariable(env, v.Name, typeOf(v.Type), sym))
	}
	return corpus, nil
}
