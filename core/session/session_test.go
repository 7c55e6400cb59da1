package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextProvider(t *testing.T) {
	t.Run("context user wins", func(t *testing.T) {
		p := ContextProvider{Fallback: Config{UserID: 9}}
		s := p.Current(WithUser(context.Background(), 3))
		require.NotNil(t, s.UserID)
		assert.Equal(t, uint(3), *s.UserID)
	})

	t.Run("fallback when context is empty", func(t *testing.T) {
		p := ContextProvider{Fallback: Config{UserID: 9}}
		s := p.Current(context.Background())
		require.NotNil(t, s.UserID)
		assert.Equal(t, uint(9), *s.UserID)
	})

	t.Run("anonymous when nothing is set", func(t *testing.T) {
		s := ContextProvider{}.Current(context.Background())
		assert.Nil(t, s.UserID)
	})
}
