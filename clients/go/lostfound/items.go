package lostfound

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// Item types.
const (
	ItemLost  = "lost"
	ItemFound = "found"
)

// Item is a reported lost or found item.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// CreateItemRequest is the request body for reporting an item.
type CreateItemRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// UploadImageRequest carries a base64-encoded image.
type UploadImageRequest struct {
	Image string `json:"image"`
}

// ListItems lists items, optionally restricted to "lost" or "found".
func (c *Client) ListItems(ctx context.Context, itemType string) ([]Item, error) {
	path := "/api/items"
	if itemType != "" {
		path += "?type=" + url.QueryEscape(itemType)
	}
	return getData[[]Item](ctx, c, http.MethodGet, path, nil)
}

// CreateItem reports a new item.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	return getData[*Item](ctx, c, http.MethodPost, "/api/items", req)
}

// UploadItemImage attaches an image to an item. The raw bytes are sent as a
// base64 data URL.
func (c *Client) UploadItemImage(ctx context.Context, itemID, contentType string, image []byte) error {
	if contentType == "" {
		contentType = http.DetectContentType(image)
	}
	encoded := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
	_, err := c.doRequest(ctx, http.MethodPost, "/api/items/"+url.PathEscape(itemID)+"/image", UploadImageRequest{Image: encoded})
	return err
}

// FilterItems keeps items whose title or description contains term,
// ignoring case. An empty term keeps everything.
func FilterItems(items []Item, term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), term) ||
			strings.Contains(strings.ToLower(item.Description), term) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
