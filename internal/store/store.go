package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/eldtechnologies/lostfound/internal/models"
)

// DataStore defines the interface for persistent storage of claims.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Claim operations
	CreateClaim(ctx context.Context, itemID, userID string) (*models.Claim, error)
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error)
	ListClaimsByStatus(ctx context.Context, status string, limit, offset int) ([]models.Claim, int, error)
	IncrementMessageCount(ctx context.Context, id uuid.UUID) error

	// Analytics
	CountClaimsByStatus(ctx context.Context) (map[string]int64, error)
	SumMessageCount(ctx context.Context) (int64, error)
}

// ChatStore holds claim conversations. RedisStore and MemoryChatStore
// implement it.
type ChatStore interface {
	Ping(ctx context.Context) error
	// AddMessage stores msg, assigning its ID and Timestamp when unset.
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	// GetClaimMessages returns up to limit of the newest messages of a
	// claim, oldest first.
	GetClaimMessages(ctx context.Context, claimID string, limit int) ([]models.ChatMessage, error)
}

var (
	_ DataStore = (*PostgresStore)(nil)
	_ DataStore = (*SQLiteStore)(nil)
	_ ChatStore = (*RedisStore)(nil)
	_ ChatStore = (*MemoryChatStore)(nil)
)
