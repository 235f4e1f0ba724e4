package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ccpubsub/internal/model"
)

func TestStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.LoadToken(ctx)
	assert.ErrorIs(t, err, model.ErrTokenNotFound)

	require.NoError(t, s.SaveToken(ctx, "a.b.c"))
	token, err := s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", token)

	require.NoError(t, s.DeleteToken(ctx))
	_, err = s.LoadToken(ctx)
	assert.ErrorIs(t, err, model.ErrTokenNotFound)
}
