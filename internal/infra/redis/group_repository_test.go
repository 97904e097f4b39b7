package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/internal/infra/memory"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return &Client{client: rc, logger: logger.NewNop()}
}

func newCachedRepo(t *testing.T) (*CachedGroupRepository, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	repo, err := NewCachedGroupRepository(store.Groups, newTestClient(t), time.Minute)
	require.NoError(t, err)
	return repo, store
}

func TestCachedGroupRepository(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("name reads are served from cache", func(t *testing.T) {
		repo, store := newCachedRepo(t)
		g, err := group.New("Payments")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, acme, g))

		warmed, err := repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)

		// dropping the backing record proves the next read hits the cache
		require.NoError(t, store.Groups.Delete(ctx, acme, g.ID))

		cached, err := repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)
		assert.Equal(t, warmed.ID, cached.ID)
	})

	t.Run("update invalidates id and name entries", func(t *testing.T) {
		repo, _ := newCachedRepo(t)
		g, err := group.New("Payments")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, acme, g))

		_, err = repo.GetByID(ctx, acme, g.ID)
		require.NoError(t, err)
		_, err = repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)

		g.Description = "payment operators"
		require.NoError(t, repo.Update(ctx, acme, g))

		byID, err := repo.GetByID(ctx, acme, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "payment operators", byID.Description)

		byName, err := repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)
		assert.Equal(t, "payment operators", byName.Description)
	})

	t.Run("rename frees the old name immediately", func(t *testing.T) {
		repo, _ := newCachedRepo(t)
		g, err := group.New("Payments")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, acme, g))

		// warm the name cache with the pre-rename record
		_, err = repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)

		g.Name = "Billing"
		require.NoError(t, repo.Update(ctx, acme, g))

		_, err = repo.GetByName(ctx, acme, "Payments")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err), "old name must not serve the stale record")

		renamed, err := repo.GetByName(ctx, acme, "Billing")
		require.NoError(t, err)
		assert.Equal(t, g.ID, renamed.ID)
	})

	t.Run("delete drops the name entry", func(t *testing.T) {
		repo, _ := newCachedRepo(t)
		g, err := group.New("Payments")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, acme, g))

		_, err = repo.GetByName(ctx, acme, "Payments")
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, acme, g.ID))

		_, err = repo.GetByName(ctx, acme, "Payments")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
