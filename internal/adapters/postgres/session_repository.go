package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nepalpay/esewa-service/internal/domain"
	"github.com/nepalpay/esewa-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// ErrSessionNotFound is returned when no session row matches the lookup
var ErrSessionNotFound = errors.New("payment session not found")

// SessionRepository persists payment session records in PostgreSQL
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const createSessionSQL = `
INSERT INTO payment_sessions (
	id, product_code, transaction_uuid, total_amount, signature, state, status
) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// CreateSession inserts a new session row
func (r *SessionRepository) CreateSession(ctx context.Context, record *models.SessionRecord) error {
	amount, err := decimalToNumeric(record.TotalAmount)
	if err != nil {
		return fmt.Errorf("convert total amount: %w", err)
	}

	_, err = r.pool.Exec(ctx, createSessionSQL,
		record.ID,
		record.ProductCode,
		record.TransactionUUID,
		amount,
		record.Signature,
		record.State,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("create payment session: %w", err)
	}

	return nil
}

const getSessionSQL = `
SELECT id, product_code, transaction_uuid, total_amount, signature, state, status,
       created_at, updated_at, verified_at
FROM payment_sessions
WHERE transaction_uuid = $1
`

// GetByTransactionUUID retrieves a session row by its transaction identifier
func (r *SessionRepository) GetByTransactionUUID(ctx context.Context, transactionUUID string) (*models.SessionRecord, error) {
	row := r.pool.QueryRow(ctx, getSessionSQL, transactionUUID)

	var record models.SessionRecord
	var id uuid.UUID
	var amount pgtype.Numeric
	var verifiedAt pgtype.Timestamptz

	err := row.Scan(
		&id,
		&record.ProductCode,
		&record.TransactionUUID,
		&amount,
		&record.Signature,
		&record.State,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
		&verifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get payment session: %w", err)
	}

	record.ID = id
	record.TotalAmount, err = numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("parse total amount: %w", err)
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		record.VerifiedAt = &t
	}

	return &record, nil
}

const markVerifiedSQL = `
UPDATE payment_sessions
SET state = $2, verified_at = now(), updated_at = now()
WHERE transaction_uuid = $1
`

// MarkVerified records the verification outcome for a session
func (r *SessionRepository) MarkVerified(ctx context.Context, transactionUUID, state string) error {
	tag, err := r.pool.Exec(ctx, markVerifiedSQL, transactionUUID, state)
	if err != nil {
		return fmt.Errorf("mark session verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

const updateStatusSQL = `
UPDATE payment_sessions
SET status = $2, updated_at = now()
WHERE transaction_uuid = $1
`

// UpdateStatus records the latest gateway transaction status
func (r *SessionRepository) UpdateStatus(ctx context.Context, transactionUUID, status string) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, transactionUUID, status)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// decimalToNumeric converts an amount through its signed string form. The
// stored value must carry the exact scale the signature was computed over;
// Decimal.String trims trailing zeros and would turn 100.50 into 100.5.
func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(domain.FormatAmount(d)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	value, err := n.Value()
	if err != nil {
		return decimal.Zero, err
	}
	str, ok := value.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected numeric driver value %T", value)
	}
	return decimal.NewFromString(str)
}
