package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	ID            string `json:"id"`
	Role          Role   `json:"role"`
	Content       string `json:"content"`
	Timestamp     int64  `json:"timestamp"`
	QuickActionID string `json:"quickActionId,omitempty"`
}
