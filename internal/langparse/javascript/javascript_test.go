package javascript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

const sample = `const MAX_RETRIES = 3;

/** Authenticates a user and returns a session token. */
function login(user) {
  return user;
}

export class Session {
  close() {
    return null;
  }
}
`

func TestParse_ExtractsFunctionClassMethodConstant(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte(sample), "auth.js")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	login, ok := byName["login"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindFunction, login.Kind)
	assert.Equal(t, "Authenticates a user and returns a session token.", login.Docstring)

	assert.Contains(t, byName, "MAX_RETRIES")
	assert.Equal(t, symbol.KindConstant, byName["MAX_RETRIES"].Kind)

	session, ok := byName["Session"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindClass, session.Kind)

	closeMethod, ok := byName["close"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindMethod, closeMethod.Kind)
	assert.Equal(t, session.ID, closeMethod.Parent)
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, symbol.LangJavaScript, New().Language())
}

func TestParse_ArrowFunctionConstIsKindFunction(t *testing.T) {
	a := New()
	src := `const login = (user) => {
  return user;
};

const MAX_RETRIES = 3;
`
	res, err := a.Parse(context.Background(), []byte(src), "auth.js")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	login, ok := byName["login"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindFunction, login.Kind)

	assert.Contains(t, byName, "MAX_RETRIES")
	assert.Equal(t, symbol.KindConstant, byName["MAX_RETRIES"].Kind)
}
