package lostfound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// DefaultSenderName labels messages from senders without a display name.
const DefaultSenderName = "Admin"

// ChatMessage is one message in a claim conversation.
type ChatMessage struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	IsProofRequest bool      `json:"isProofRequest,omitempty"`
	Timestamp      Timestamp `json:"timestamp"`
}

// UnmarshalJSON accepts the legacy senderUid field as the sender id.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type alias ChatMessage
	var raw struct {
		alias
		SenderUID string `json:"senderUid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ChatMessage(raw.alias)
	if m.SenderID == "" {
		m.SenderID = raw.SenderUID
	}
	return nil
}

// DisplayName returns the sender label shown for messages from others.
func (m ChatMessage) DisplayName() string {
	if m.SenderName == "" {
		return DefaultSenderName
	}
	return m.SenderName
}

// SendChatRequest is the request body for posting a chat message.
type SendChatRequest struct {
	Content string `json:"content"`
}

func chatPath(claimID string) string {
	return "/api/claims/" + url.PathEscape(claimID) + "/chat"
}

// GetClaimChat returns the full message list of a claim conversation.
func (c *Client) GetClaimChat(ctx context.Context, claimID string) ([]ChatMessage, error) {
	return getData[[]ChatMessage](ctx, c, http.MethodGet, chatPath(claimID), nil)
}

// SendChatMessage posts a message to a claim conversation and returns the
// message as stored by the server.
func (c *Client) SendChatMessage(ctx context.Context, claimID, content string) (*ChatMessage, error) {
	return getData[*ChatMessage](ctx, c, http.MethodPost, chatPath(claimID), SendChatRequest{Content: content})
}
