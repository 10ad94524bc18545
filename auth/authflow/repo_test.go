package authflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-edge-auth/auth/authflow"
	"github.com/jrsteele09/go-edge-auth/kvstore"
	"github.com/stretchr/testify/require"
)

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	repo := authflow.NewKVRepo(store, time.Hour)

	t.Run("round trip under prefixed key", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "tok", authflow.AuthFlowState{OriginalPath: "/admin"}))

		raw, found, err := store.Get(ctx, "state-tok")
		require.NoError(t, err)
		require.True(t, found)
		require.JSONEq(t, `{"originalPath":"/admin"}`, string(raw))

		got, err := repo.Get(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, &authflow.AuthFlowState{OriginalPath: "/admin"}, got)
	})

	t.Run("unknown state", func(t *testing.T) {
		got, err := repo.Get(ctx, "nope")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("empty state", func(t *testing.T) {
		got, err := repo.Get(ctx, "")
		require.NoError(t, err)
		require.Nil(t, got)
		require.Error(t, repo.Put(ctx, "", authflow.AuthFlowState{}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "gone", authflow.AuthFlowState{OriginalPath: "/"}))
		require.NoError(t, repo.Delete(ctx, "gone"))
		got, err := repo.Get(ctx, "gone")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("corrupt record", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "state-bad", []byte("{"), time.Hour))
		_, err := repo.Get(ctx, "bad")
		require.Error(t, err)
	})
}

func TestKVRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	store := kvstore.NewMemory().WithClock(func() time.Time { return now })
	repo := authflow.NewKVRepo(store, 24*time.Hour)

	require.NoError(t, repo.Put(ctx, "tok", authflow.AuthFlowState{OriginalPath: "/x"}))
	now = now.Add(24 * time.Hour)

	got, err := repo.Get(ctx, "tok")
	require.NoError(t, err)
	require.Nil(t, got)
}
