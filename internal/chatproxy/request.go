package chatproxy

import (
	"fmt"
	"strings"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/llm"
)

type Message struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

type ExamplePost struct {
	Body  string `json:"body"`
	Title string `json:"title,omitempty"`
}

// Request is the body of POST /api/chat.
type Request struct {
	Messages           []Message       `json:"messages"`
	SystemPrompt       string          `json:"systemPrompt"`
	CurrentContent     string          `json:"currentContent"`
	CurrentTitle       string          `json:"currentTitle,omitempty"`
	CurrentDescription string          `json:"currentDescription,omitempty"`
	Platform           domain.Platform `json:"platform"`
	APIKey             string          `json:"apiKey"`
	ExamplePosts       []ExamplePost   `json:"examplePosts,omitempty"`
}

// Event is one SSE data payload.
type Event struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Done terminates a successful stream.
const Done = "[DONE]"

// BuildSystemPrompt appends the pinned style examples and the draft being
// edited to the playbook prompt.
func BuildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)

	examples := make([]ExamplePost, 0, len(req.ExamplePosts))
	for _, ex := range req.ExamplePosts {
		if strings.TrimSpace(ex.Body) != "" {
			examples = append(examples, ex)
		}
	}
	if len(examples) > 0 {
		fmt.Fprintf(&b, "\n\n---\nIMPORTANT: The user has pinned the following %d post(s) as examples of their personal writing style. "+
			"When the user asks you to write in \"their style\", \"my voice\", or similar — you MUST closely mimic the tone, "+
			"sentence structure, vocabulary, formatting, and personality shown in these examples.\n\n", len(examples))

		blocks := make([]string, 0, len(examples))
		for i, ex := range examples {
			parts := make([]string, 0, 2)
			if ex.Title != "" {
				parts = append(parts, "Title: "+ex.Title)
			}
			parts = append(parts, ex.Body)
			blocks = append(blocks, fmt.Sprintf("Example %d:\n%s", i+1, strings.Join(parts, "\n")))
		}
		b.WriteString(strings.Join(blocks, "\n\n"))
	}

	var state []string
	if req.CurrentTitle != "" {
		state = append(state, "Title: "+req.CurrentTitle)
	}
	if req.CurrentDescription != "" {
		state = append(state, "Description: "+req.CurrentDescription)
	}
	if req.CurrentContent != "" {
		state = append(state, "Content:\n"+req.CurrentContent)
	}
	if len(state) > 0 {
		b.WriteString("\n\n---\nThe user is currently working on a post. Here is the current state:\n\n")
		b.WriteString(strings.Join(state, "\n\n"))
	}

	return b.String()
}

func (r Request) toLLM() llm.Request {
	messages := make([]llm.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return llm.Request{
		APIKey:   r.APIKey,
		System:   BuildSystemPrompt(r),
		Messages: messages,
	}
}
