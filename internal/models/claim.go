package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim statuses.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

// Claim is a user's ownership claim over a reported item.
type Claim struct {
	ID           uuid.UUID `json:"id"`
	ItemID       string    `json:"itemId"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	MessageCount int64     `json:"messageCount"`
}
