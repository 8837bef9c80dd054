package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS claims (
	id UUID PRIMARY KEY,
	item_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	remarks TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	message_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_claims_user ON claims(user_id);
CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status, created_at);
`

// RunMigrations applies the claims schema. Statements are idempotent.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, postgresSchema)
	return err
}

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const pgClaimColumns = `id, item_id, user_id, status, remarks, created_at, last_active_at, message_count`

func scanPGClaim(row pgx.Row) (*models.Claim, error) {
	claim := &models.Claim{}
	err := row.Scan(
		&claim.ID,
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
	return claim, nil
}

// CreateClaim creates a new pending claim.
func (s *PostgresStore) CreateClaim(ctx context.Context, itemID, userID string) (*models.Claim, error) {
	return scanPGClaim(s.pool.QueryRow(ctx, `
		INSERT INTO claims (id, item_id, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+pgClaimColumns,
		crypto.NewUUIDv7(), itemID, userID, models.ClaimPending))
}

// GetClaim retrieves a claim by ID.
func (s *PostgresStore) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	claim, err := scanPGClaim(s.pool.QueryRow(ctx, `SELECT `+pgClaimColumns+` FROM claims WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return claim, nil
}

func collectPGClaims(rows pgx.Rows) ([]models.Claim, error) {
	defer rows.Close()
	claims := []models.Claim{}
	for rows.Next() {
		claim, err := scanPGClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

// ListClaimsByUser returns a user's claims, newest first.
func (s *PostgresStore) ListClaimsByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+pgClaimColumns+`
		FROM claims
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectPGClaims(rows)
}

// ListClaimsByStatus retrieves claims in a status with pagination, oldest first.
func (s *PostgresStore) ListClaimsByStatus(ctx context.Context, status string, limit, offset int) ([]models.Claim, int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE status = $1`, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+pgClaimColumns+`
		FROM claims
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	claims, err := collectPGClaims(rows)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// IncrementMessageCount increments the message count and updates activity.
func (s *PostgresStore) IncrementMessageCount(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE claims
		SET message_count = message_count + 1, last_active_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

// CountClaimsByStatus returns the number of claims per status.
func (s *PostgresStore) CountClaimsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
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
func (s *PostgresStore) SumMessageCount(ctx context.Context) (int64, error) {
	var sum int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(message_count), 0) FROM claims`).Scan(&sum)
	return sum, err
}
