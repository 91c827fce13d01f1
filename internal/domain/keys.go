package domain

// Local storage keys.
const (
	FeedKey    = "contentflow-feed"
	FormatsKey = "contentflow-formats"
	CadenceKey = "contentflow-cadence"
	APIKeyKey  = "contentflow-api-key"
	ThemeKey   = "contentflow-theme"

	ChatKeyPrefix = "contentflow-chat-"

	LegacyFeedKey      = "cleartype-feed"
	LegacyDocumentsKey = "cleartype-documents"
)

func ChatKey(postID string) string {
	return ChatKeyPrefix + postID
}
