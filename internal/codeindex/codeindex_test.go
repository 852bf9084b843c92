package codeindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

func sampleSymbols() []*symbol.Symbol {
	return []*symbol.Symbol{
		{ID: "a.py::MAX_RETRIES", File: "a.py", Name: "MAX_RETRIES", Kind: symbol.KindConstant, Language: symbol.LangPython},
		{ID: "a.py::UserService#class", File: "a.py", Name: "UserService", Kind: symbol.KindClass, Language: symbol.LangPython},
		{ID: "a.py::UserService.get_user#method", File: "a.py", Name: "get_user", Kind: symbol.KindMethod, Language: symbol.LangPython, Parent: "a.py::UserService#class"},
		{ID: "a.py::UserService.delete_user#method", File: "a.py", Name: "delete_user", Kind: symbol.KindMethod, Language: symbol.LangPython, Signature: "def delete_user(self, id)"},
		{ID: "a.py::authenticate#function", File: "a.py", Name: "authenticate", Kind: symbol.KindFunction, Language: symbol.LangPython},
		{ID: "b.js::login#function", File: "b.js", Name: "login", Kind: symbol.KindFunction, Language: symbol.LangJavaScript},
	}
}

func TestCodeIndex_Get(t *testing.T) {
	idx := New(sampleSymbols())
	s := idx.Get("a.py::authenticate#function")
	require.NotNil(t, s)
	assert.Equal(t, "authenticate", s.Name)
	assert.Nil(t, idx.Get("missing"))
}

func TestCodeIndex_Files(t *testing.T) {
	idx := New(sampleSymbols())
	assert.Equal(t, []string{"a.py", "b.js"}, idx.Files())
}

func TestCodeIndex_Search_DeleteUserFirst(t *testing.T) {
	idx := New(sampleSymbols())
	results, err := idx.Search(context.Background(), "delete", Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "delete_user", results[0].Name)
}

func TestCodeIndex_Search_FilterByKind(t *testing.T) {
	idx := New(sampleSymbols())
	results, err := idx.Search(context.Background(), "user", Filter{Kind: symbol.KindMethod})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, symbol.KindMethod, r.Kind)
	}
}

func TestCodeIndex_Search_FileGlobBasenameFallback(t *testing.T) {
	idx := New(sampleSymbols())
	results, err := idx.Search(context.Background(), "login", Filter{FileGlob: "b.js"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "login", results[0].Name)

	nested := New(append(sampleSymbols(), &symbol.Symbol{ID: "web/app.js::logout#function", File: "web/app.js", Name: "logout", Kind: symbol.KindFunction, Language: symbol.LangJavaScript}))
	results, err = nested.Search(context.Background(), "logout", Filter{FileGlob: "app.js"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "logout", results[0].Name)
}

func TestCodeIndex_Search_NoMatchExcluded(t *testing.T) {
	idx := New(sampleSymbols())
	results, err := idx.Search(context.Background(), "zzz_nope", Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
