package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"gptproxy/payload"
)

// ChatClient sends the blocks as a chat completion: an optional system turn followed by one user turn.
type ChatClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewChatClient returns a go-openai backed client. baseURL overrides the
// default OpenAI endpoint when non-empty.
func NewChatClient(baseURL, apiKey, model, systemPrompt string, httpClient *http.Client) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &ChatClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

func (c *ChatClient) Name() string {
	return "chat"
}

func (c *ChatClient) Infer(ctx context.Context, blocks []payload.ContentBlock) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: buildChatMessages(c.systemPrompt, blocks),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
		}
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", upstreamError(errors.New("no choices in chat completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

func buildChatMessages(systemPrompt string, blocks []payload.ContentBlock) []openai.ChatCompletionMessage {
	parts := make([]openai.ChatMessagePart, 0, len(blocks))
	for _, block := range blocks {
		switch b := block.(type) {
		case payload.TextBlock:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: b.Text,
			})
		case payload.ImageBlock:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    b.DataURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})
	return messages
}
