// Package models holds persistence-facing records for the audit trail.
// The core session types in internal/domain never depend on these; they
// exist for the repository and handler layers.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionRecord is the persisted form of one payment session: the audit
// trail row written when a form is issued and updated as callbacks and
// status fetches resolve.
type SessionRecord struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	VerifiedAt      *time.Time
	ID              uuid.UUID
	ProductCode     string
	TransactionUUID string
	Signature       string
	State           string
	Status          string
	TotalAmount     decimal.Decimal
}
