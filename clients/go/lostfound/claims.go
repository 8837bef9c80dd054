package lostfound

import (
	"context"
	"net/http"
	"net/url"
)

// Claim statuses.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

// Claim is a user's ownership claim over a reported item.
type Claim struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	UserID    string    `json:"userId,omitempty"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	Item      *Item     `json:"item,omitempty"`
}

// Title returns the claimed item's title, or "Item" when it was not embedded.
func (c Claim) Title() string {
	if c.Item == nil || c.Item.Title == "" {
		return "Item"
	}
	return c.Item.Title
}

// CreateClaimRequest is the request body for filing a claim.
type CreateClaimRequest struct {
	ItemID string `json:"itemId"`
}

// ReviewRequest carries optional admin remarks for approve/reject.
type ReviewRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// CreateClaim files a claim on an item.
func (c *Client) CreateClaim(ctx context.Context, itemID string) (*Claim, error) {
	return getData[*Claim](ctx, c, http.MethodPost, "/api/claims", CreateClaimRequest{ItemID: itemID})
}

// MyClaims lists the current user's claims.
func (c *Client) MyClaims(ctx context.Context) ([]Claim, error) {
	return getData[[]Claim](ctx, c, http.MethodGet, "/api/claims/my", nil)
}

// PendingClaims lists claims awaiting review (admin).
func (c *Client) PendingClaims(ctx context.Context) ([]Claim, error) {
	return getData[[]Claim](ctx, c, http.MethodGet, "/api/admin/claims/pending", nil)
}

// ApproveClaim approves a claim (admin). Remarks are optional.
func (c *Client) ApproveClaim(ctx context.Context, claimID, remarks string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/admin/claims/"+url.PathEscape(claimID)+"/approve", ReviewRequest{Remarks: remarks})
	return err
}

// RejectClaim rejects a claim (admin).
func (c *Client) RejectClaim(ctx context.Context, claimID, remarks string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/admin/claims/"+url.PathEscape(claimID)+"/reject", ReviewRequest{Remarks: remarks})
	return err
}

// Analytics returns the admin dashboard counters as reported by the server.
func (c *Client) Analytics(ctx context.Context) (map[string]any, error) {
	return getData[map[string]any](ctx, c, http.MethodGet, "/api/admin/analytics", nil)
}
