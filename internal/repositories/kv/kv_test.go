package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/orgball2608/contentflow/internal/migrations"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db, migrations.DialectSQLite))

	return map[string]Repository{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db, logger.NewNop()),
	}
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, repo.Set(ctx, "contentflow-feed", `{"items":[]}`))
			got, err := repo.Get(ctx, "contentflow-feed")
			require.NoError(t, err)
			assert.Equal(t, `{"items":[]}`, got)

			require.NoError(t, repo.Set(ctx, "contentflow-feed", `{"items":[{"id":"a"}]}`))
			got, err = repo.Get(ctx, "contentflow-feed")
			require.NoError(t, err)
			assert.Equal(t, `{"items":[{"id":"a"}]}`, got)

			require.NoError(t, repo.Set(ctx, "contentflow-chat-b", "[]"))
			require.NoError(t, repo.Set(ctx, "contentflow-chat-a", "[]"))
			require.NoError(t, repo.Set(ctx, "CONTENTFLOW-CHAT-upper", "[]"))

			keys, err := repo.Keys(ctx, "contentflow-chat-")
			require.NoError(t, err)
			assert.Equal(t, []string{"contentflow-chat-a", "contentflow-chat-b"}, keys)

			require.NoError(t, repo.Delete(ctx, "contentflow-chat-a"))
			require.NoError(t, repo.Delete(ctx, "contentflow-chat-a"))
			keys, err = repo.Keys(ctx, "contentflow-chat-")
			require.NoError(t, err)
			assert.Equal(t, []string{"contentflow-chat-b"}, keys)
		})
	}
}

func TestKeysEscapesWildcards(t *testing.T) {
	ctx := context.Background()

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Set(ctx, "a_b", "1"))
			require.NoError(t, repo.Set(ctx, "axb", "2"))

			keys, err := repo.Keys(ctx, "a_")
			require.NoError(t, err)
			assert.Equal(t, []string{"a_b"}, keys)
		})
	}
}
