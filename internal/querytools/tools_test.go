package querytools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/indexstore"
	"github.com/codeindexer/codeindex/internal/symbol"
)

func hashOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func seedRepo(t *testing.T, store *indexstore.Store) (content []byte, sym *symbol.Symbol) {
	t.Helper()
	content = []byte("def greet():\n    return 'hi'\n")
	sym = &symbol.Symbol{
		File:          "pkg/hello.py",
		Name:          "greet",
		QualifiedName: "greet",
		Kind:          symbol.KindFunction,
		Language:      symbol.LangPython,
		Signature:     "def greet()",
		Line:          1,
		EndLine:       2,
		ByteOffset:    0,
		ByteLength:    len(content),
		ContentHash:   hashOf(content),
	}
	symbol.AssignIDs([]*symbol.Symbol{sym})

	require.NoError(t, store.Save("acme", "widgets", []string{"pkg/hello.py"},
		[]*symbol.Symbol{sym}, map[string][]byte{"pkg/hello.py": content},
		map[string]int{"python": 1}, nil, ""))
	return content, sym
}

func TestListRepos_ReturnsSavedRepo(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := ListRepos(context.Background(), store, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"acme/widgets"}, res.Repos)
}

func TestGetRepoOutline_CountsDirectoriesAndKinds(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := GetRepoOutline(context.Background(), store, "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	assert.Equal(t, 1, res.SymbolCount)
	assert.Equal(t, 1, res.Directories["pkg"])
	assert.Equal(t, 1, res.SymbolKinds["function"])
}

func TestResolveRepo_BareNameUniqueSuffixMatch(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := GetRepoOutline(context.Background(), store, "widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", res.Repo)
}

func TestResolveRepo_AmbiguousBareNameErrors(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)
	require.NoError(t, store.Save("other", "widgets", []string{"x.py"}, nil,
		map[string][]byte{"x.py": []byte("pass\n")}, map[string]int{"python": 1}, nil, ""))

	_, err := GetRepoOutline(context.Background(), store, "widgets")
	assert.ErrorIs(t, err, ErrAmbiguousRepo)
}

func TestGetFileTree_PrefixFilters(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := GetFileTree(context.Background(), store, "acme/widgets", "pkg/")
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/hello.py"}, res.Files)

	none, err := GetFileTree(context.Background(), store, "acme/widgets", "nope/")
	require.NoError(t, err)
	assert.Empty(t, none.Files)
}

func TestGetFileOutline_ReturnsFileSymbols(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	_, sym := seedRepo(t, store)

	res, err := GetFileOutline(context.Background(), store, "acme/widgets", "pkg/hello.py")
	require.NoError(t, err)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, sym.ID, res.Symbols[0].ID)
}

func TestGetSymbol_VerifyAndContextLines(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	content, sym := seedRepo(t, store)

	res, err := GetSymbol(context.Background(), store, "acme/widgets", GetSymbolArgs{
		ID: sym.ID, Verify: true, ContextLines: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, string(content), res.Source)
	require.NotNil(t, res.Verified)
	assert.True(t, *res.Verified)
}

func TestGetSymbol_VerifyFailsOnTamperedHash(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	content := []byte("def greet():\n    return 'hi'\n")
	sym := &symbol.Symbol{
		File: "pkg/hello.py", Name: "greet", QualifiedName: "greet",
		Kind: symbol.KindFunction, Language: symbol.LangPython,
		Line: 1, EndLine: 2, ByteOffset: 0, ByteLength: len(content),
		ContentHash: "deadbeef",
	}
	symbol.AssignIDs([]*symbol.Symbol{sym})
	require.NoError(t, store.Save("acme", "widgets", []string{"pkg/hello.py"},
		[]*symbol.Symbol{sym}, map[string][]byte{"pkg/hello.py": content},
		map[string]int{"python": 1}, nil, ""))

	res, err := GetSymbol(context.Background(), store, "acme/widgets", GetSymbolArgs{
		ID: sym.ID, Verify: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Verified)
	assert.False(t, *res.Verified)
}

func TestGetSymbols_BatchSeparatesSuccessAndFailure(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	_, sym := seedRepo(t, store)

	res, err := GetSymbols(context.Background(), store, "acme/widgets", []string{sym.ID, "nope"})
	require.NoError(t, err)
	assert.Contains(t, res.Symbols, sym.ID)
	assert.Contains(t, res.Errors, "nope")
}

func TestSearchSymbols_RanksAndCaps(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := SearchSymbols(context.Background(), store, "acme/widgets", SearchArgs{Query: "greet"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "greet", res.Results[0].Name)
}

func TestSearchText_FindsLineAndTruncates(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := SearchText(context.Background(), store, "acme/widgets", SearchTextArgs{Query: "return"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 2, res.Hits[0].Line)
	assert.False(t, res.Truncated)

	capped, err := SearchText(context.Background(), store, "acme/widgets", SearchTextArgs{Query: "e", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, capped.Hits, 1)
	assert.True(t, capped.Truncated)
}

func TestInvalidateCache_RemovesIndex(t *testing.T) {
	store := indexstore.NewIndexStore(t.TempDir())
	seedRepo(t, store)

	res, err := InvalidateCache(context.Background(), store, "acme/widgets")
	require.NoError(t, err)
	assert.True(t, res.Removed)

	_, err = ListRepos(context.Background(), store, struct{}{})
	require.NoError(t, err)
}
