package models

// ChatMessage is a claim conversation message stored in Redis.
type ChatMessage struct {
	ID             string `json:"id"` // ULID
	ClaimID        string `json:"claim_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name,omitempty"`
	Content        string `json:"content"`
	IsProofRequest bool   `json:"proof,omitempty"`
	Timestamp      int64  `json:"ts"` // Unix ms
}
