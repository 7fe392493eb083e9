package lark

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

// Client observes one Lark group chat through the Open Platform APIs.
// It implements the Surface repository: Poll lists the most recent
// messages and Reply posts text back to the same chat.
type Client struct {
	larkCli  *lark.Client
	chatID   string
	pageSize int
}

// NewClient creates a client bound to a single chat.
func NewClient(appID, appSecret, chatID string) *Client {
	return &Client{
		larkCli:  lark.NewClient(appID, appSecret),
		chatID:   chatID,
		pageSize: 50,
	}
}

// Poll returns the latest text messages in chronological order. Dedup
// happens upstream, so returning the same window on consecutive polls
// is fine.
func (c *Client) Poll(ctx context.Context) ([]domain.Event, error) {
	// ByCreateTimeDesc yields the newest page; the Lark API defaults to
	// ascending, which would return messages from when the chat was
	// created.
	req := larkim.NewListMessageReqBuilder().
		ContainerIdType("chat").
		ContainerId(c.chatID).
		SortType("ByCreateTimeDesc").
		PageSize(c.pageSize).
		Build()

	resp, err := c.larkCli.Im.Message.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("list messages error: %s", resp.Msg)
	}

	var events []domain.Event
	for _, item := range resp.Data.Items {
		if item.MessageId == nil || item.MsgType == nil || *item.MsgType != "text" {
			continue
		}
		if item.Body == nil || item.Body.Content == nil {
			continue
		}
		if item.Sender == nil || item.Sender.Id == nil {
			continue
		}

		events = append(events, domain.Event{
			ExternalID: *item.MessageId,
			Author:     *item.Sender.Id,
			Text:       parseTextContent(*item.Body.Content),
		})
	}

	// Newest-first from the API, oldest-first for the pipeline.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Reply posts a text message to the observed chat.
func (c *Client) Reply(ctx context.Context, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(c.chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	fmt.Printf("[Lark] Message sent to %s\n", c.chatID)
	return nil
}

// parseTextContent extracts the plain text from a text message body,
// which arrives as a JSON object like {"text":"hello"}.
func parseTextContent(content string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return content
	}
	return parsed.Text
}
