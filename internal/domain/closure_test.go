package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClosurePreview_BlockingOnly(t *testing.T) {
	p := &ClosurePreview{Blockers: []Blocker{
		{ModuleID: "wallet", Severity: SeverityBlocking, Title: "wallet balance must be zero"},
		{ModuleID: "vacancies", Severity: SeverityWarning, Title: "draft vacancies will be discarded"},
	}}

	assert.True(t, p.HasBlocking())
	blocking := p.BlockingOnly()
	assert.Len(t, blocking, 1)
	assert.Equal(t, "wallet", blocking[0].ModuleID)

	warningsOnly := &ClosurePreview{Blockers: []Blocker{
		{ModuleID: "vacancies", Severity: SeverityWarning},
	}}
	assert.False(t, warningsOnly.HasBlocking())
	assert.Empty(t, warningsOnly.BlockingOnly())
}

func TestCloseBlockedError_EnumeratesBlockers(t *testing.T) {
	err := &CloseBlockedError{Blockers: []Blocker{
		{ModuleID: "wallet", Title: "wallet balance must be zero"},
		{ModuleID: "projects", Title: "active projects must be completed or cancelled"},
	}}

	assert.Equal(t,
		"organization cannot be closed: wallet: wallet balance must be zero; projects: active projects must be completed or cancelled",
		err.Error())
}

func TestFileTrashEntry_Purgeable(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&FileTrashEntry{ExpiresAt: &past}).Purgeable(now))
	assert.False(t, (&FileTrashEntry{ExpiresAt: &future}).Purgeable(now))
	assert.False(t, (&FileTrashEntry{}).Purgeable(now), "no expiry means infinite retention")
	assert.False(t, (&FileTrashEntry{ExpiresAt: &past, RestoredAt: &past}).Purgeable(now), "restored entries are never purged")
}
