package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidemart/storefront/internal/domain"
	"github.com/tidemart/storefront/pkg/errors"
)

type buyerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBuyerRepository creates a new buyer repository
func NewBuyerRepository(db *sql.DB, logger *zap.Logger) *buyerRepository {
	return &buyerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *buyerRepository) GetBySessionToken(ctx context.Context, token string) (*domain.Buyer, error) {
	// Bcrypt hashes are salted, so there is no direct hash lookup; verify
	// the token against each active buyer's stored hash.
	query := `
		SELECT address, name, session_token_hash, is_active, created_at, updated_at
		FROM buyers
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query buyers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var buyer domain.Buyer

		err := rows.Scan(
			&buyer.Address,
			&buyer.Name,
			&buyer.SessionTokenHash,
			&buyer.IsActive,
			&buyer.CreatedAt,
			&buyer.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(buyer.SessionTokenHash), []byte(token)); err == nil {
			return &buyer, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid session token"}
}

func (r *buyerRepository) GetByAddress(ctx context.Context, address string) (*domain.Buyer, error) {
	query := `
		SELECT address, name, session_token_hash, is_active, created_at, updated_at
		FROM buyers
		WHERE address = $1
	`

	var buyer domain.Buyer
	err := r.db.QueryRowContext(ctx, query, address).Scan(
		&buyer.Address,
		&buyer.Name,
		&buyer.SessionTokenHash,
		&buyer.IsActive,
		&buyer.CreatedAt,
		&buyer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "buyer", ID: address}
	}
	if err != nil {
		r.logger.Error("Failed to get buyer by address", zap.Error(err))
		return nil, err
	}

	return &buyer, nil
}

func (r *buyerRepository) Create(ctx context.Context, buyer *domain.Buyer) error {
	query := `
		INSERT INTO buyers (address, name, session_token_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if buyer.CreatedAt.IsZero() {
		buyer.CreatedAt = now
	}
	if buyer.UpdatedAt.IsZero() {
		buyer.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		buyer.Address,
		buyer.Name,
		buyer.SessionTokenHash,
		buyer.IsActive,
		buyer.CreatedAt,
		buyer.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create buyer", zap.Error(err))
		return err
	}

	return nil
}
