package calllog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(10)
	for _, action := range []string{"create-web-call", "list-agents", "create-phone-call"} {
		require.NoError(t, s.Save(ctx, Record{Action: action}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "create-phone-call", got[0].Action)
	require.Equal(t, "list-agents", got[1].Action)
	require.NotEmpty(t, got[0].ID)
	require.False(t, got[0].CreatedAt.IsZero())
}

func TestInMemoryStoreDropsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(2)
	require.NoError(t, s.Save(ctx, Record{ID: "a"}))
	require.NoError(t, s.Save(ctx, Record{ID: "b"}))
	require.NoError(t, s.Save(ctx, Record{ID: "c"}))

	got, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].ID)
	require.Equal(t, "b", got[1].ID)
}

func TestInMemoryStoreEmpty(t *testing.T) {
	got, err := NewInMemoryStore(0).Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNewStoreWithoutDatabaseURLIsInMemory(t *testing.T) {
	s, err := NewStore(context.Background(), " ")
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.(*InMemoryStore)
	require.True(t, ok, "store type = %T", s)
}
