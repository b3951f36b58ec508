package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Get(ctx, "routines")
	require.NoError(t, err)
	assert.Nil(t, got, "absent key reads as nil")

	require.NoError(t, s.Set(ctx, "routines", []byte(`[]`)))
	got, err = s.Get(ctx, "routines")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "routines", "completedRoutines"))
	assert.Equal(t, 0, s.Len())
}
