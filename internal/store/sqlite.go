package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/lostfound.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/lostfound.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		remarks TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		message_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_claims_user ON claims(user_id);
	CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const sqliteClaimColumns = `id, item_id, user_id, status, remarks, created_at, last_active_at, message_count`

func scanSQLiteClaim(row interface{ Scan(...any) error }) (*models.Claim, error) {
	claim := &models.Claim{}
	var idStr string
	err := row.Scan(
		&idStr,
		&claim.ItemID,
		&claim.UserID,
		&claim.Status,
		&claim.Remarks,
		&claim.CreatedAt,
		&claim.LastActiveAt,
		&claim.MessageCount,
	)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	claim.ID = id
	return claim, nil
}

// CreateClaim creates a new pending claim.
func (s *SQLiteStore) CreateClaim(ctx context.Context, itemID, userID string) (*models.Claim, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (id, item_id, user_id, status, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), itemID, userID, models.ClaimPending, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetClaim(ctx, id)
}

// GetClaim retrieves a claim by ID.
func (s *SQLiteStore) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteClaimColumns+` FROM claims WHERE id = ?`, id.String())
	claim, err := scanSQLiteClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return claim, nil
}

// ListClaimsByUser returns a user's claims, newest first.
func (s *SQLiteStore) ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteClaimColumns+`
		FROM claims
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := []models.Claim{}
	for rows.Next() {
		claim, err := scanSQLiteClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

// ListClaimsByStatus retrieves claims in a status with pagination, oldest first.
func (s *SQLiteStore) ListClaimsByStatus(ctx context.Context, status string, limit, offset int) ([]models.Claim, int, error) {
	// Get total count
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE status = ?`, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteClaimColumns+`
		FROM claims
		WHERE status = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	claims := []models.Claim{}
	for rows.Next() {
		claim, err := scanSQLiteClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		claims = append(claims, *claim)
	}
	return claims, total, rows.Err()
}

// IncrementMessageCount increments the message count and updates activity.
func (s *SQLiteStore) IncrementMessageCount(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE claims
		SET message_count = message_count + 1, last_active_at = ?
		WHERE id = ?
	`, time.Now().UTC(), id.String())
	return err
}

// CountClaimsByStatus returns the number of claims per status.
func (s *SQLiteStore) CountClaimsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// SumMessageCount returns the total message count across all claims.
func (s *SQLiteStore) SumMessageCount(ctx context.Context) (int64, error) {
	var sum int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(message_count), 0) FROM claims`).Scan(&sum)
	return sum, err
}
