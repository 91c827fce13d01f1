// Package playbook holds the per-platform assistant prompts and quick actions.
package playbook

import (
	"slices"

	"github.com/orgball2608/contentflow/internal/domain"
)

type QuickAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

type Playbook struct {
	Platform     domain.Platform `json:"platform"`
	Name         string          `json:"name"`
	SystemPrompt string          `json:"systemPrompt"`
	QuickActions []QuickAction   `json:"quickActions"`
}

// For returns the playbook of platform, or the general writing assistant.
func For(platform domain.Platform) Playbook {
	if pb, ok := playbooks[platform]; ok {
		return pb
	}
	return general
}

// QuickAction finds an action offered for platform.
func (p Playbook) QuickAction(id string) (QuickAction, bool) {
	i := slices.IndexFunc(p.QuickActions, func(a QuickAction) bool { return a.ID == id })
	if i < 0 {
		return QuickAction{}, false
	}
	return p.QuickActions[i], true
}

func withShared(actions ...QuickAction) []QuickAction {
	return append(actions, sharedActions...)
}
