package entities

import "time"

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
)

// MigrationRun is the persisted summary of one migration invocation.
type MigrationRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Status     RunStatus `gorm:"size:20" json:"status"`

	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Images  int `json:"images"`

	Outcomes []PageOutcome `gorm:"foreignKey:RunID" json:"outcomes,omitempty"`
}

// PageOutcome is the persisted per-page ledger entry of a run.
type PageOutcome struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RunID    uint   `gorm:"index" json:"run_id"`
	PageID   int    `gorm:"index" json:"page_id"`
	Title    string `gorm:"size:512" json:"title"`
	Slug     string `gorm:"index;size:255" json:"slug"`
	Decision string `gorm:"size:20" json:"decision"` // create, update, skip
	Status   string `gorm:"size:20" json:"status"`   // ok, failed, simulated, skipped
	Stage    string `gorm:"size:20" json:"stage"`    // stage reached when failed
	Detail   string `gorm:"size:1000" json:"detail,omitempty"`
}
