package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// defaultSystemPrompt keeps answers short enough to post back into a
// chat room.
const defaultSystemPrompt = `You are a helpful assistant answering questions in a group chat.
Keep answers brief and conversational, a few sentences at most.
Answer in plain text without markdown formatting.`

// Client is the assistant session over an OpenAI-compatible API. It
// implements the Assistant repository.
type Client struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

// NewClient creates an assistant client. An empty apiKey yields a nil
// client, which the caller treats as no assistant configured.
func NewClient(apiKey, baseURL, model, systemPrompt string) *Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Ready reports whether the session can accept questions.
func (c *Client) Ready() bool {
	return c != nil && c.client != nil
}

// Ask sends one question and returns the answer.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
