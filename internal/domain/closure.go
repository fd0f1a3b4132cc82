package domain

// BlockerSeverity classifies how a blocker affects closure.
type BlockerSeverity string

const (
	// SeverityBlocking prevents closure until resolved.
	SeverityBlocking BlockerSeverity = "blocking"
	// SeverityWarning is surfaced to the owner but does not prevent closure.
	SeverityWarning BlockerSeverity = "warning"
)

// Blocker is a reason, surfaced by one checker, that closure must not
// proceed (blocking) or should be flagged (warning). Blockers are
// transient: produced by a checker's Check, never persisted.
type Blocker struct {
	ModuleID       string          `json:"module_id"`
	Severity       BlockerSeverity `json:"severity"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ActionRequired string          `json:"action_required,omitempty"`
}

// ArchivableItem describes data a checker would snapshot into the archive
// at closure time.
type ArchivableItem struct {
	ModuleID    string `json:"module_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
}

// ClosurePreview is the aggregate read model returned by the preview
// endpoint. It is never persisted.
type ClosurePreview struct {
	Blockers       []Blocker        `json:"blockers"`
	ArchivableData []ArchivableItem `json:"archivable_data"`
}

// HasBlocking returns true if any blocker has blocking severity.
func (p *ClosurePreview) HasBlocking() bool {
	for _, b := range p.Blockers {
		if b.Severity == SeverityBlocking {
			return true
		}
	}
	return false
}

// BlockingOnly returns the subset of blockers with blocking severity.
func (p *ClosurePreview) BlockingOnly() []Blocker {
	var out []Blocker
	for _, b := range p.Blockers {
		if b.Severity == SeverityBlocking {
			out = append(out, b)
		}
	}
	return out
}
