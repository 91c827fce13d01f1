package chatimpl

import (
	"context"
	"testing"

	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	h := New(Opts{Storage: storage, Logger: logger.NewNop()})

	msgs, err := h.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	want := []domain.ChatMessage{
		chat.NewMessage(domain.RoleUser, "Make it shorter", "shorten", 1),
		chat.NewMessage(domain.RoleAssistant, "Done.", "", 2),
	}
	require.NoError(t, h.Save(ctx, "p1", want))
	require.NoError(t, h.Save(ctx, "p2", nil))

	got, err := h.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ids, err := h.PostIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	require.NoError(t, h.Clear(ctx, "p1"))
	got, err = h.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadMalformed(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, domain.ChatKey("p1"), "[{"))

	h := New(Opts{Storage: storage, Logger: logger.NewNop()})
	got, err := h.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
