// Package episodic implements the Tier-2 durable ledger: a
// keyword-searchable log of past session summaries, its recall adapter,
// and the consolidation trigger.
package episodic

// SessionSummary is the persisted ledger row for one session summary.
type SessionSummary struct {
	ID string `gorm:"primaryKey;size:36"`

	// Timestamp is seconds since the Unix epoch, fractional, so it is
	// directly comparable with Tier-3 document timestamps.
	Timestamp float64 `gorm:"not null;index"`

	Content string `gorm:"not null"`

	// Archived entries are excluded from recall and never un-archive.
	Archived bool `gorm:"not null;default:false;index"`

	// ContentHash is the sha256 of Content; the unique index makes
	// duplicate inserts a silent no-op.
	ContentHash string `gorm:"uniqueIndex;size:64;not null"`
}

// TableName names the ledger table.
func (SessionSummary) TableName() string {
	return "session_summaries"
}

// Entry is the read-path projection of a ledger row handed to callers.
type Entry struct {
	Content   string
	Timestamp float64
	Archived  bool
}
