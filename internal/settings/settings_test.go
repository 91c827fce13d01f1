package settings

import (
	"context"
	"testing"

	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKey(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, s.SetAPIKey(ctx, " sk-ant-123456 "))
	key, err = s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-123456", key)
	assert.Equal(t, "*********3456", MaskKey(key))

	require.NoError(t, s.SetAPIKey(ctx, ""))
	key, err = s.APIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestTheme(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	theme, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	require.NoError(t, s.SetTheme(ctx, ThemeDark))
	theme, err = s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	assert.True(t, errors.IsInvalidInput(s.SetTheme(ctx, "sepia")))
}
