package python

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

const sample = `MAX_RETRIES = 3

def authenticate(user):
    """Checks credentials and returns a session token."""
    return user


class UserService:
    """Manages user accounts."""

    def get_user(self, id):
        return id

    def _private_helper(self):
        return None

    @staticmethod
    def delete_user(id):
        return id
`

func TestParse_ExtractsSixSymbols(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte(sample), "users.py")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	assert.Contains(t, byName, "MAX_RETRIES")
	assert.Equal(t, symbol.KindConstant, byName["MAX_RETRIES"].Kind)

	auth := byName["authenticate"]
	require.NotNil(t, auth)
	assert.Equal(t, symbol.KindFunction, auth.Kind)
	assert.Equal(t, "Checks credentials and returns a session token.", auth.Docstring)

	svc := byName["UserService"]
	require.NotNil(t, svc)
	assert.Equal(t, symbol.KindClass, svc.Kind)

	getUser := byName["get_user"]
	require.NotNil(t, getUser)
	assert.Equal(t, symbol.KindMethod, getUser.Kind)
	assert.Equal(t, "UserService.get_user", getUser.QualifiedName)
	assert.Equal(t, svc.ID, getUser.Parent)

	deleteUser := byName["delete_user"]
	require.NotNil(t, deleteUser)
	assert.Contains(t, deleteUser.Decorators, "staticmethod")

	helper := byName["_private_helper"]
	require.NotNil(t, helper)
	assert.Equal(t, symbol.KindMethod, helper.Kind)
	assert.False(t, helper.Exported)
	assert.True(t, getUser.Exported)
}

func TestParse_Deterministic(t *testing.T) {
	a := New()
	r1, err1 := a.Parse(context.Background(), []byte(sample), "users.py")
	r2, err2 := a.Parse(context.Background(), []byte(sample), "users.py")
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, len(r1.Symbols), len(r2.Symbols))
	for i := range r1.Symbols {
		assert.Equal(t, r1.Symbols[i], r2.Symbols[i])
	}
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, symbol.LangPython, New().Language())
}
