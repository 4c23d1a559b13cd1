package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"taskmate-backend/internal/chat"
)

// Client turns chat history plus the latest message into a proposal via the
// OpenAI chat completions API with function calling.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

const defaultTimeout = 30 * time.Second

func NewClient(apiKey, model string) *Client {
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   model,
		timeout: defaultTimeout,
	}
}

// Propose implements chat.Completer.
func (c *Client) Propose(ctx context.Context, history []chat.Message, message string) (chat.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		Tools:    toolDefinitions(),
	})
	if err != nil {
		return chat.Proposal{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return chat.Proposal{}, fmt.Errorf("chat completion: empty response")
	}

	m := resp.Choices[0].Message
	prop := chat.Proposal{Text: m.Content}
	if len(m.ToolCalls) > 0 {
		// One operation per turn; extra calls are ignored rather than
		// executed unconfirmed.
		tc := m.ToolCalls[0]
		prop.Tool = &chat.ToolProposal{
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		}
	}
	return prop, nil
}
