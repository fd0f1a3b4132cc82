package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// WalletRepository reads the organization money ledger. Ledger rows are
// append-only and written by the finance service; this service only sums
// them, and never deletes them, including after organization closure:
// history is retained for audit.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository creates a new wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Balance returns the organization's current balance in minor units,
// derived by summing ledger entries.
func (r *WalletRepository) Balance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_ledger
		WHERE organization_id = $1
	`
	var balance int64
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&balance)
	return balance, err
}
