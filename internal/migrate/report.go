package migrate

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stage identifies how far a page got through the pipeline.
type Stage string

const (
	StageList      Stage = "list"
	StageNormalize Stage = "normalize"
	StageImages    Stage = "images"
	StageMatch     Stage = "match"
	StageWrite     Stage = "write"
)

type OutcomeStatus string

const (
	StatusOK        OutcomeStatus = "ok"
	StatusFailed    OutcomeStatus = "failed"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusSimulated OutcomeStatus = "simulated" // dry run: the write that would have happened
)

// Outcome is one page's ledger entry.
type Outcome struct {
	PageID   int
	Title    string
	Slug     string
	Decision Decision
	Status   OutcomeStatus
	Stage    Stage
	Err      string

	// Warnings are non-fatal anomalies (duplicate destination slugs,
	// unresolved images) that did not stop the page.
	Warnings []string

	// UnresolvedImages are origin URLs left unrewritten in the content.
	UnresolvedImages []string
}

// Report accumulates per-page outcomes and aggregate counters. Appends are
// safe under concurrent workers; with more than one worker the Outcomes slice
// is in completion order, not source order.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Cancelled  bool

	mu       sync.Mutex
	created  int
	updated  int
	skipped  int
	failed   int
	images   int
	outcomes []Outcome
}

func NewReport(dryRun bool) *Report {
	return &Report{StartedAt: time.Now(), DryRun: dryRun}
}

// Add records one page's outcome and bumps the matching counter.
func (r *Report) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes = append(r.outcomes, o)
	switch o.Status {
	case StatusFailed:
		r.failed++
	case StatusSkipped:
		r.skipped++
	case StatusOK, StatusSimulated:
		switch o.Decision.Kind {
		case DecisionCreate:
			r.created++
		case DecisionUpdate:
			r.updated++
		}
	}
}

func (r *Report) SetImages(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = n
}

// Outcomes returns the accumulated entries. Read it only after the run
// finished.
func (r *Report) Outcomes() []Outcome { return r.outcomes }

func (r *Report) Created() int { return r.created }
func (r *Report) Updated() int { return r.updated }
func (r *Report) Skipped() int { return r.skipped }
func (r *Report) Failed() int  { return r.failed }
func (r *Report) Images() int  { return r.images }

// Summary renders the end-of-run ledger.
func (r *Report) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	b.WriteString(line + "\n")
	if r.DryRun {
		b.WriteString("  MIGRATION SUMMARY (dry run)\n")
	} else {
		b.WriteString("  MIGRATION SUMMARY\n")
	}
	if r.Cancelled {
		b.WriteString("  run cancelled before completion\n")
	}
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "  Pages created:    %d\n", r.created)
	fmt.Fprintf(&b, "  Pages updated:    %d\n", r.updated)
	fmt.Fprintf(&b, "  Pages skipped:    %d\n", r.skipped)
	fmt.Fprintf(&b, "  Pages failed:     %d\n", r.failed)
	fmt.Fprintf(&b, "  Images handled:   %d\n", r.images)
	b.WriteString(line)
	return b.String()
}
