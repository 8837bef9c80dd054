package store

import (
	"context"
	"sync"
	"time"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

// MemoryChatStore is a process-local ChatStore used when no Redis URL is
// configured. Contents are lost on restart.
type MemoryChatStore struct {
	mu       sync.RWMutex
	messages map[string][]models.ChatMessage
}

// NewMemoryChatStore creates an empty in-memory chat store.
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{messages: make(map[string][]models.ChatMessage)}
}

// Ping always succeeds.
func (s *MemoryChatStore) Ping(ctx context.Context) error {
	return nil
}

// AddMessage appends a message to its claim's conversation.
func (s *MemoryChatStore) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = crypto.NewMessageID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.messages[msg.ClaimID]
	// Keep timestamp order; equal timestamps stay in insertion order.
	i := len(list)
	for i > 0 && list[i-1].Timestamp > msg.Timestamp {
		i--
	}
	list = append(list, models.ChatMessage{})
	copy(list[i+1:], list[i:])
	list[i] = *msg
	s.messages[msg.ClaimID] = list
	return nil
}

// GetClaimMessages returns the newest limit messages of a claim, oldest first.
func (s *MemoryChatStore) GetClaimMessages(ctx context.Context, claimID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.messages[claimID]
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]models.ChatMessage, len(list))
	copy(out, list)
	return out, nil
}
