package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/pkg/errors"
)

type checkoutAttemptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCheckoutAttemptRepository creates a new checkout attempt repository
func NewCheckoutAttemptRepository(db *sql.DB, logger *zap.Logger) *checkoutAttemptRepository {
	return &checkoutAttemptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *checkoutAttemptRepository) Create(ctx context.Context, attempt *domain.CheckoutAttempt) error {
	query := `
		INSERT INTO checkout_attempts (id, buyer_address, tx_digest, status, shipping_ref, line_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tx_digest) DO NOTHING
	`

	now := time.Now()
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}
	if attempt.UpdatedAt.IsZero() {
		attempt.UpdatedAt = now
	}

	snapshot, err := json.Marshal(attempt.LineSnapshot)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.BuyerAddress,
		attempt.TxDigest,
		attempt.Status,
		attempt.ShippingRef,
		snapshot,
		attempt.CreatedAt,
		attempt.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create checkout attempt", zap.Error(err))
		return err
	}

	return nil
}

func (r *checkoutAttemptRepository) GetByDigest(ctx context.Context, digest string) (*domain.CheckoutAttempt, error) {
	query := `
		SELECT id, buyer_address, tx_digest, status, shipping_ref, line_snapshot, created_at, updated_at
		FROM checkout_attempts
		WHERE tx_digest = $1
	`

	attempt, err := scanAttempt(r.db.QueryRowContext(ctx, query, digest))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "checkout attempt", ID: digest}
	}
	if err != nil {
		r.logger.Error("Failed to get checkout attempt", zap.Error(err))
		return nil, err
	}

	return attempt, nil
}

func (r *checkoutAttemptRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AttemptStatus) error {
	query := `
		UPDATE checkout_attempts
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update checkout attempt status", zap.Error(err))
		return err
	}

	return nil
}

func (r *checkoutAttemptRepository) ListByStatus(ctx context.Context, status domain.AttemptStatus, limit int) ([]*domain.CheckoutAttempt, error) {
	query := `
		SELECT id, buyer_address, tx_digest, status, shipping_ref, line_snapshot, created_at, updated_at
		FROM checkout_attempts
		WHERE status = $1
		ORDER BY updated_at
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		r.logger.Error("Failed to list checkout attempts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.CheckoutAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			continue
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

func scanAttempt(row rowScanner) (*domain.CheckoutAttempt, error) {
	var attempt domain.CheckoutAttempt
	var snapshot []byte

	err := row.Scan(
		&attempt.ID,
		&attempt.BuyerAddress,
		&attempt.TxDigest,
		&attempt.Status,
		&attempt.ShippingRef,
		&snapshot,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &attempt.LineSnapshot); err != nil {
			return nil, err
		}
	}

	return &attempt, nil
}
