package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCorpusJSONBuildsFunctionsAndVariables(t *testing.T) {
	doc := `{
		"soname": "libfoo.so.1",
		"architecture": "x86_64",
		"functions": [
			{"name": "add", "symbol": "add", "return_type": "int",
			 "parameters": [{"name": "a", "type": "int"}, {"name": "b", "type": "int"}]}
		],
		"variables": [
			{"name": "counter", "symbol": "counter", "type": "int"}
		]
	}`

	env := &Environment{Name: "t"}
	corpus, err := LoadCorpusJSON(env, strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "libfoo.so.1", corpus.SOName)
	assert.Equal(t, "x86_64", corpus.Architecture)
	require.Len(t, corpus.Functions, 1)
	assert.Equal(t, "add", corpus.Functions[0].QualifiedName())
	assert.Len(t, corpus.Functions[0].Type.Parameters, 2)
	require.Len(t, corpus.Variables, 1)
	assert.Equal(t, "counter", corpus.Variables[0].QualifiedName())
}

func TestLoadCorpusJSONRejectsMalformedDocument(t *testing.T) {
	env := &Environment{Name: "t"}
	_, err := LoadCorpusJSON(env, strings.NewReader("not json"))
	assert.Error(t, err)
}
