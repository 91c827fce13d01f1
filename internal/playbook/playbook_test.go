package playbook

import (
	"testing"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	for _, p := range domain.Platforms {
		pb := For(p)
		assert.Equal(t, p, pb.Platform)
		assert.NotEmpty(t, pb.SystemPrompt)
		assert.Len(t, pb.QuickActions, 6, p)
	}

	general := For(domain.NoPlatform)
	assert.Equal(t, "Writing Assistant", general.Name)
	assert.Len(t, general.QuickActions, 3)
	assert.Equal(t, general, For("myspace"))
}

func TestQuickAction(t *testing.T) {
	pb := For(domain.PlatformTwitter)

	a, ok := pb.QuickAction("twitter-thread")
	require.True(t, ok)
	assert.Equal(t, "Expand to thread", a.Label)

	_, ok = pb.QuickAction("fix-grammar")
	assert.True(t, ok)

	_, ok = pb.QuickAction("linkedin-hook")
	assert.False(t, ok)
}
