package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BibekPathak/shark-db/internal/config"
	"github.com/BibekPathak/shark-db/internal/engine"
	"github.com/BibekPathak/shark-db/internal/server"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	eng := engine.New(engine.Options{})
	srv := httptest.NewServer(server.New(eng, config.Default()).Router())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClient_EndToEnd(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))
	require.NoError(t, c.CreateTable(ctx, "users"))
	assert.ErrorIs(t, c.CreateTable(ctx, "users"), ErrConflict)

	created, err := c.Put(ctx, "users", "alice", []byte(`{"age":25}`))
	require.NoError(t, err)
	assert.True(t, created)
	created, err = c.Put(ctx, "users", "alice", []byte(`{"age":26}`))
	require.NoError(t, err)
	assert.False(t, created)

	v, err := c.Get(ctx, "users", "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"age":26}`, string(v))

	_, err = c.Get(ctx, "users", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := c.Exists(ctx, "users", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := c.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)

	existed, err := c.Delete(ctx, "users", "alice")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = c.Delete(ctx, "users", "alice")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestClient_ScansAndStats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateTable(ctx, "products"))
	for _, k := range []string{"laptop", "lamp", "mouse", "keyboard"} {
		_, err := c.Put(ctx, "products", k, []byte("p-"+k))
		require.NoError(t, err)
	}

	entries, err := c.Scan(ctx, "products", "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "keyboard", entries[0].Key)
	assert.Equal(t, []byte("p-keyboard"), entries[0].Value)

	entries, err = c.Scan(ctx, "products", "lamp", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lamp", entries[0].Key)
	assert.Equal(t, "laptop", entries[1].Key)

	entries, err = c.PrefixScan(ctx, "products", "la", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	stats, err := c.Stats(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, "keyboard", stats.MinKey)
	assert.Equal(t, "mouse", stats.MaxKey)
	assert.False(t, stats.LastModified.IsZero())

	_, err = c.Stats(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_DropAndRename(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateTable(ctx, "old"))
	_, err := c.Put(ctx, "old", "k", []byte("v"))
	require.NoError(t, err)

	require.NoError(t, c.RenameTable(ctx, "old", "new"))
	v, err := c.Get(ctx, "new", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))

	require.NoError(t, c.TruncateTable(ctx, "new"))
	_, err = c.Get(ctx, "new", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.DropTable(ctx, "new"))
	assert.ErrorIs(t, c.DropTable(ctx, "new"), ErrNotFound)
}
