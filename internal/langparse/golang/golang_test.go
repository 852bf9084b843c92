package golang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

const sample = `package demo

// MaxRetries bounds reconnect attempts.
const MaxRetries = 3

// Fetch loads a document by id.
func Fetch(id string) (string, error) {
	return id, nil
}

type Client struct {
	baseURL string
}

// Close releases the client's resources.
func (c *Client) Close() error {
	return nil
}
`

func TestParse_ExtractsFunctionConstAndMethod(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte(sample), "demo.go")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	fetch, ok := byName["Fetch"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindFunction, fetch.Kind)
	assert.Contains(t, fetch.Signature, "func Fetch(id string) (string, error)")
	assert.Equal(t, "Fetch loads a document by id.", fetch.Docstring)
	assert.True(t, fetch.Exported)

	maxRetries, ok := byName["MaxRetries"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindConstant, maxRetries.Kind)

	closeMethod, ok := byName["Close"]
	require.True(t, ok)
	assert.Equal(t, "Client", closeMethod.Receiver)
	assert.Equal(t, "Client.Close", closeMethod.QualifiedName)
}

func TestParse_UnexportedConstSkipped(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte("package demo\n\nconst internalLimit = 5\n"), "demo.go")
	require.NoError(t, err)
	for _, s := range res.Symbols {
		assert.NotEqual(t, "internalLimit", s.Name)
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := New()
	r1, err1 := a.Parse(context.Background(), []byte(sample), "demo.go")
	r2, err2 := a.Parse(context.Background(), []byte(sample), "demo.go")
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, len(r1.Symbols), len(r2.Symbols))
	for i := range r1.Symbols {
		assert.Equal(t, r1.Symbols[i], r2.Symbols[i])
	}
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, symbol.LangGo, New().Language())
}
