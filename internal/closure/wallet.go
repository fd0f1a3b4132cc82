package closure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
)

// WalletBalances is the wallet surface the checker depends on.
type WalletBalances interface {
	Balance(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// WalletChecker blocks closure while the organization holds a non-zero
// balance.
type WalletChecker struct {
	wallet WalletBalances
}

// NewWalletChecker creates the wallet closure checker.
func NewWalletChecker(wallet WalletBalances) *WalletChecker {
	return &WalletChecker{wallet: wallet}
}

func (c *WalletChecker) ModuleID() string { return "wallet" }

func (c *WalletChecker) Check(ctx context.Context, orgID uuid.UUID) (*CheckResult, error) {
	balance, err := c.wallet.Balance(ctx, orgID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{}
	if balance != 0 {
		result.Blockers = append(result.Blockers, domain.Blocker{
			ModuleID:       c.ModuleID(),
			Severity:       domain.SeverityBlocking,
			Type:           "nonzero_balance",
			Title:          "wallet balance must be zero",
			Description:    fmt.Sprintf("the organization wallet holds a balance of %d; withdraw or settle it before closing", balance),
			ActionRequired: "withdraw the remaining balance",
		})
	}
	return result, nil
}

// Archive is a deliberate no-op. Ledger history is retained beyond
// organization lifetime for audit and compliance; it is never copied into
// the archive and never purged with it.
func (c *WalletChecker) Archive(ctx context.Context, orgID, archiveID uuid.UUID) (json.RawMessage, error) {
	return nil, nil
}

// DeleteArchived is a no-op for the same reason as Archive.
func (c *WalletChecker) DeleteArchived(ctx context.Context, archiveID uuid.UUID) error {
	return nil
}
