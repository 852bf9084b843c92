package indexstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

func helloSymbol(content []byte) *symbol.Symbol {
	s := &symbol.Symbol{
		File:          "hello.py",
		Name:          "hello",
		QualifiedName: "hello",
		Kind:          symbol.KindFunction,
		Language:      symbol.LangPython,
		Line:          1,
		EndLine:       1,
		ByteOffset:    0,
		ByteLength:    len(content),
		ContentHash:   contentHash(content),
	}
	symbol.AssignIDs([]*symbol.Symbol{s})
	return s
}

func TestSave_Load_RoundTrip(t *testing.T) {
	store := NewIndexStore(t.TempDir())

	content := []byte("def hello():\n    pass\n")
	sym := helloSymbol(content)

	err := store.Save("acme", "widgets", []string{"hello.py"}, []*symbol.Symbol{sym},
		map[string][]byte{"hello.py": content}, map[string]int{"python": 1}, nil, "")
	require.NoError(t, err)

	m, err := store.Load("acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", m.Repo)
	assert.Equal(t, []string{"hello.py"}, m.SourceFiles)
	assert.Equal(t, contentHash(content), m.FileHashes["hello.py"])
	require.Len(t, m.Symbols, 1)
	assert.Equal(t, "hello", m.Symbols[0].Name)
}

func TestLoad_MissingRepoReturnsErrMissing(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	_, err := store.Load("nobody", "nothing")
	assert.ErrorIs(t, err, ErrMissing)
}

func TestLoad_FutureSchemaVersionReturnsErrMissing(t *testing.T) {
	base := t.TempDir()
	store := NewIndexStore(base)

	content := []byte("x = 1\n")
	require.NoError(t, store.Save("a", "b", []string{"x.py"}, nil,
		map[string][]byte{"x.py": content}, map[string]int{"python": 1}, nil, ""))

	// Patch index_version to a future value directly on disk.
	raw, err := os.ReadFile(filepath.Join(base, "a-b.json"))
	require.NoError(t, err)
	patched := strings.Replace(string(raw), `"index_version": 2`, `"index_version": 102`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(base, "a-b.json"), []byte(patched), 0o644))

	_, err = store.Load("a", "b")
	assert.ErrorIs(t, err, ErrMissing)

	// A subsequent save overwrites cleanly.
	require.NoError(t, store.Save("a", "b", []string{"x.py"}, nil,
		map[string][]byte{"x.py": content}, map[string]int{"python": 1}, nil, ""))
	m, err := store.Load("a", "b")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, m.IndexVersion)
}

func TestGetSymbolContent_ByteExact(t *testing.T) {
	store := NewIndexStore(t.TempDir())

	content := []byte("def foo():\n    return 1\n")
	sym := &symbol.Symbol{
		File: "foo.py", Name: "foo", QualifiedName: "foo", Kind: symbol.KindFunction,
		Language: symbol.LangPython, Line: 1, EndLine: 2,
		ByteOffset: 0, ByteLength: len(content), ContentHash: contentHash(content),
	}
	symbol.AssignIDs([]*symbol.Symbol{sym})

	require.NoError(t, store.Save("o", "n", []string{"foo.py"}, []*symbol.Symbol{sym},
		map[string][]byte{"foo.py": content}, map[string]int{"python": 1}, nil, ""))

	got, err := store.GetSymbolContent("o", "n", sym.ID)
	require.NoError(t, err)
	assert.Equal(t, string(content), got)
	assert.Equal(t, contentHash([]byte(got)), sym.ContentHash)
}

func TestGetSymbolContent_InvalidUTF8ReplacedNotFatal(t *testing.T) {
	store := NewIndexStore(t.TempDir())

	content := []byte("def foo():\n    return '\xff\xfe'\n")
	sym := &symbol.Symbol{
		File: "bad.py", Name: "foo", QualifiedName: "foo", Kind: symbol.KindFunction,
		Language: symbol.LangPython, Line: 1, EndLine: 2,
		ByteOffset: 0, ByteLength: len(content), ContentHash: contentHash(content),
	}
	symbol.AssignIDs([]*symbol.Symbol{sym})

	require.NoError(t, store.Save("o", "n", []string{"bad.py"}, []*symbol.Symbol{sym},
		map[string][]byte{"bad.py": content}, map[string]int{"python": 1}, nil, ""))

	got, err := store.GetSymbolContent("o", "n", sym.ID)
	require.NoError(t, err)
	assert.Contains(t, got, "def foo():")
}

func TestGetSymbolContent_UnknownIDReturnsErrSymbolNotFound(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	content := []byte("x = 1\n")
	require.NoError(t, store.Save("o", "n", []string{"x.py"}, nil,
		map[string][]byte{"x.py": content}, map[string]int{"python": 1}, nil, ""))

	_, err := store.GetSymbolContent("o", "n", "nope")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestDetectChanges_NoPriorIndexAllNew(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	changed, newFiles, deleted, err := store.DetectChanges("o", "n", map[string][]byte{
		"a.py": []byte("1"), "b.py": []byte("2"),
	})
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Empty(t, deleted)
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, newFiles)
}

func TestDetectChanges_ChangedNewDeleted(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	require.NoError(t, store.Save("o", "n", []string{"hello.py", "greet.js"}, nil,
		map[string][]byte{"hello.py": []byte("old"), "greet.js": []byte("greet")},
		map[string]int{"python": 1, "javascript": 1}, nil, ""))

	changed, newFiles, deleted, err := store.DetectChanges("o", "n", map[string][]byte{
		"hello.py": []byte("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.py"}, changed)
	assert.Empty(t, newFiles)
	assert.Equal(t, []string{"greet.js"}, deleted)
}

func TestIncrementalSave_UpdatesChangedKeepsUntouched(t *testing.T) {
	store := NewIndexStore(t.TempDir())

	helloOld := []byte("def hello(): pass\n")
	greet := []byte("function greet() {}\n")
	helloSym := &symbol.Symbol{File: "hello.py", Name: "hello", QualifiedName: "hello", Kind: symbol.KindFunction, Language: symbol.LangPython, Line: 1, EndLine: 1, ContentHash: contentHash(helloOld), ByteLength: len(helloOld)}
	greetSym := &symbol.Symbol{File: "greet.js", Name: "greet", QualifiedName: "greet", Kind: symbol.KindFunction, Language: symbol.LangJavaScript, Line: 1, EndLine: 1, ContentHash: contentHash(greet), ByteLength: len(greet)}
	symbol.AssignIDs([]*symbol.Symbol{helloSym, greetSym})

	require.NoError(t, store.Save("o", "n", []string{"hello.py", "greet.js"}, []*symbol.Symbol{helloSym, greetSym},
		map[string][]byte{"hello.py": helloOld, "greet.js": greet},
		map[string]int{"python": 1, "javascript": 1}, nil, ""))

	helloNew := []byte("def hello(): return 2\n")
	helloNewSym := &symbol.Symbol{File: "hello.py", Name: "hello", QualifiedName: "hello", Kind: symbol.KindFunction, Language: symbol.LangPython, Line: 1, EndLine: 1, ContentHash: contentHash(helloNew), ByteLength: len(helloNew)}
	symbol.AssignIDs([]*symbol.Symbol{helloNewSym})

	err := store.IncrementalSave("o", "n", []string{"hello.py"}, nil, nil,
		[]*symbol.Symbol{helloNewSym}, map[string][]byte{"hello.py": helloNew},
		map[string]int{"python": 1, "javascript": 1})
	require.NoError(t, err)

	m, err := store.Load("o", "n")
	require.NoError(t, err)
	assert.Equal(t, contentHash(helloNew), m.FileHashes["hello.py"])

	var names []string
	for _, s := range m.Symbols {
		names = append(names, s.File)
	}
	assert.Contains(t, names, "hello.py")
	assert.Contains(t, names, "greet.js")
}

func TestIncrementalSave_DeletedFileRemovedFromManifestAndMirror(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	hello := []byte("def hello(): pass\n")
	greet := []byte("function greet() {}\n")

	require.NoError(t, store.Save("o", "n", []string{"hello.py", "greet.js"}, nil,
		map[string][]byte{"hello.py": hello, "greet.js": greet},
		map[string]int{"python": 1, "javascript": 1}, nil, ""))

	err := store.IncrementalSave("o", "n", nil, nil, []string{"greet.js"}, nil, nil,
		map[string]int{"python": 1})
	require.NoError(t, err)

	m, err := store.Load("o", "n")
	require.NoError(t, err)
	assert.NotContains(t, m.SourceFiles, "greet.js")

	_, statErr := os.Stat(filepath.Join(store.mirrorDir("o", "n"), "greet.js"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIncrementalSave_NoPriorIndexReturnsErrMissing(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	err := store.IncrementalSave("o", "n", nil, []string{"a.py"}, nil,
		nil, map[string][]byte{"a.py": []byte("x")}, map[string]int{"python": 1})
	assert.ErrorIs(t, err, ErrMissing)
}

func TestListRepos_SkipsMalformedEntries(t *testing.T) {
	base := t.TempDir()
	store := NewIndexStore(base)

	require.NoError(t, store.Save("acme", "widgets", []string{"a.py"}, nil,
		map[string][]byte{"a.py": []byte("x")}, map[string]int{"python": 1}, nil, ""))
	require.NoError(t, os.WriteFile(filepath.Join(base, "broken-repo.json"), []byte("{not json"), 0o644))

	repos, err := store.ListRepos()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets"}, repos)
}

func TestDeleteIndex_RemovesManifestAndMirror(t *testing.T) {
	store := NewIndexStore(t.TempDir())
	require.NoError(t, store.Save("o", "n", []string{"a.py"}, nil,
		map[string][]byte{"a.py": []byte("x")}, map[string]int{"python": 1}, nil, ""))

	removed, err := store.DeleteIndex("o", "n")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Load("o", "n")
	assert.ErrorIs(t, err, ErrMissing)

	removed, err = store.DeleteIndex("o", "n")
	require.NoError(t, err)
	assert.False(t, removed)
}
