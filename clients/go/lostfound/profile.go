package lostfound

import (
	"context"
	"net/http"
	"net/url"
)

// Profile is the current user's profile.
type Profile struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	CampusID    string `json:"campusId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// IsAdmin reports whether the profile has the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == "admin"
}

// UpdateProfileRequest is the editable subset of a profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
}

// GetProfile returns the current user's profile.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	return getData[*Profile](ctx, c, http.MethodGet, "/api/users/profile", nil)
}

// UpdateProfile updates the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	_, err := c.doRequest(ctx, http.MethodPut, "/api/users/profile", req)
	return err
}

// MatchItem is a suggested match for a reported item. The confidence score is
// computed by the server.
type MatchItem struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
	ImageURL        string  `json:"imageUrl,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// SuggestedMatches returns server-suggested matches for an item.
func (c *Client) SuggestedMatches(ctx context.Context, itemID string) ([]MatchItem, error) {
	return getRaw[[]MatchItem](ctx, c, http.MethodGet, "/matches/suggested/"+url.PathEscape(itemID), nil)
}

// SaleItem is an unclaimed item offered in the marketplace.
type SaleItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
	Category string  `json:"category,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// PurchaseResult is the outcome of a marketplace purchase.
type PurchaseResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaleItems lists marketplace items.
func (c *Client) SaleItems(ctx context.Context) ([]SaleItem, error) {
	return getRaw[[]SaleItem](ctx, c, http.MethodGet, "/api/sales/items", nil)
}

// Purchase buys a marketplace item.
func (c *Client) Purchase(ctx context.Context, itemID string) (*PurchaseResult, error) {
	return getRaw[*PurchaseResult](ctx, c, http.MethodPost, "/api/sales/purchase/"+url.PathEscape(itemID), nil)
}
