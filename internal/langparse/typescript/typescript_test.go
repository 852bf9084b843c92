package typescript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeindexer/codeindex/internal/symbol"
)

const sample = `export interface User {
  id: string;
}

export type UserId = string;

export class UserService {
  findById(id: string): User {
    return { id };
  }
}
`

func TestParse_ExtractsInterfaceTypeAliasAndClass(t *testing.T) {
	a := New()
	res, err := a.Parse(context.Background(), []byte(sample), "user.ts")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	byName := make(map[string]*symbol.Symbol)
	for _, s := range res.Symbols {
		byName[s.Name] = s
	}

	user, ok := byName["User"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindType, user.Kind)

	userID, ok := byName["UserId"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindType, userID.Kind)

	svc, ok := byName["UserService"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindClass, svc.Kind)

	findByID, ok := byName["findById"]
	require.True(t, ok)
	assert.Equal(t, symbol.KindMethod, findByID.Kind)
	assert.Equal(t, "UserService.findById", findByID.QualifiedName)
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, symbol.LangTypeScript, New().Language())
}

func TestParse_ArrowFunctionConstIsKindFunction(t *testing.T) {
	a := New()
	src := `export const login = (user: string): string => {
  return user;
};

export const MAX_RETRIES: number = 3;
`
	res, err := a.Parse(context.Background(), []byte(src), "auth.ts")
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
