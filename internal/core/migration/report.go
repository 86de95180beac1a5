package migration

import "github.com/SscSPs/spa_ledger/internal/core/domain"

// Report is the outcome of one migration run.
type Report struct {
	DryRun     bool       `json:"dryRun"`
	Strategies []Strategy `json:"strategies"`

	Total    int `json:"total"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`

	Repaired []Repair      `json:"repaired"`
	Skips    []SkippedItem `json:"skips"`

	// DistinctKeys is the number of distinct (owner, transaction) keys written.
	DistinctKeys int `json:"distinctKeys"`
	// VerifiedCount is the item count of the destination after the run; -1 in dry-run mode.
	VerifiedCount int `json:"verifiedCount"`
	// KeysFound is how many of this run's keys were read back from the destination.
	KeysFound int `json:"keysFound"`
	// Verified is true when every key written by this run was read back. Items the run did
	// not write (live ledger entries, rows from other sources) do not fail verification;
	// they are reported as ExtraItems.
	Verified bool `json:"verified"`

	Sample []domain.Transaction `json:"sample"`
}

// RepairedTransactions returns the number of distinct transactions that needed a repair.
func (r *Report) RepairedTransactions() int {
	seen := make(map[string]struct{}, len(r.Repaired))
	for _, rep := range r.Repaired {
		seen[rep.TransactionID] = struct{}{}
	}
	return len(seen)
}

// ExtraItems returns how many destination items this run did not write.
func (r *Report) ExtraItems() int {
	if r.VerifiedCount < 0 || r.VerifiedCount < r.KeysFound {
		return 0
	}
	return r.VerifiedCount - r.KeysFound
}
