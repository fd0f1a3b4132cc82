package closure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/loomwork/retention/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWallet struct {
	balance int64
}

func (w *fakeWallet) Balance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return w.balance, nil
}

func TestWalletChecker_NonzeroBalanceBlocks(t *testing.T) {
	wallet := &fakeWallet{balance: 15000}
	checker := NewWalletChecker(wallet)

	result, err := checker.Check(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, result.Blockers, 1)
	assert.Equal(t, "wallet", result.Blockers[0].ModuleID)
	assert.Equal(t, domain.SeverityBlocking, result.Blockers[0].Severity)
	assert.Contains(t, result.Blockers[0].Description, "15000")

	wallet.balance = 0
	result, err = checker.Check(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Blockers)
}

func TestWalletChecker_EndToEndClosure(t *testing.T) {
	owner := uuid.New()
	org := activeOrg(owner)
	orgs := newFakeOrgStore(org)
	archives := &fakeArchiveStore{}

	wallet := &fakeWallet{balance: 15000}
	o := NewOrchestrator(orgs, archives, testResolver(), []Checker{NewWalletChecker(wallet)}, testLogger())

	_, err := o.InitiateClosing(context.Background(), org.ID, owner, nil)
	var blocked *domain.CloseBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Contains(t, blocked.Error(), "wallet:")

	wallet.balance = 0
	result, err := o.InitiateClosing(context.Background(), org.ID, owner, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Archive)

	// The wallet never contributes an archived document: ledger history
	// outlives the organization.
	assert.Empty(t, archives.docs)
}
