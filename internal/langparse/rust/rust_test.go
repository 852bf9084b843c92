package rust

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

const sample = `pub const MAX_RETRIES: u32 = 3;

/// Loads a document by id.
pub fn fetch(id: &str) -> String {
    id.to_string()
}

pub struct Client {
    base_url: String,
}

impl Client {
    pub fn close(&self) -> bool {
        true
    }
}
`

func TestParse_ExtractsFunctionStructConstAndImplMethod(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte(sample), "client.rs")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	fetch, ok := byName["fetch"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindFunction, fetch.Kind)
	assert.Equal(t, "Loads a document by id.", fetch.Docstring)

	assert.Contains(t, byName, "MAX_RETRIES")
	assert.Equal(t, symbol.KindConstant, byName["MAX_RETRIES"].Kind)

	client, ok := byName["Client"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindType, client.Kind)

	closeMethod, ok := byName["close"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindMethod, closeMethod.Kind)
	assert.Equal(t, "Client.close", closeMethod.QualifiedName)
	assert.Equal(t, client.ID, closeMethod.Parent)
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, symbol.LangRust, New().Language())
}
