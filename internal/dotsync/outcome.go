package dotsync

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// OutcomeKind names a terminal state for the outcome log field and batch counters.
type OutcomeKind string

// Terminal outcome kinds.
const (
	OutcomeKindNoUpdate OutcomeKind = "no-update"
	OutcomeKindUpdated  OutcomeKind = "updated"
	OutcomeKindSkipped  OutcomeKind = "skipped"
	OutcomeKindFailed   OutcomeKind = "failed"
)

// SkipReason explains why a repository was deliberately left untouched.
type SkipReason string

// Skip reasons.
const (
	SkipReasonPathNotFound   SkipReason = "path-not-found"
	SkipReasonNonFastForward SkipReason = "non-fast-forward"
	SkipReasonDryRun         SkipReason = "dry-run"
)

// Outcome is the terminal state of one repository in a pass.
//
//sumtype:decl
type Outcome interface {
	isOutcome()
	Kind() OutcomeKind
}

// NoUpdate means the local branch already contained the remote tip.
type NoUpdate struct {
	Tip plumbing.Hash
}

// Updated means the branch was fast-forwarded from From to To.
// WorktreeRefreshed is false when the branch was not checked out.
// HookError records a failed post-update hook without changing the outcome.
type Updated struct {
	From              plumbing.Hash
	To                plumbing.Hash
	WorktreeRefreshed bool
	HookError         error
}

// Skipped means the repository was deliberately left untouched.
type Skipped struct {
	Reason SkipReason
	Detail string
	Cause  error
}

// Failed means the repository could not be synchronized.
type Failed struct {
	Err error
}

func (NoUpdate) isOutcome() {}
func (Updated) isOutcome()  {}
func (Skipped) isOutcome()  {}
func (Failed) isOutcome()   {}

// Kind implements Outcome.
func (NoUpdate) Kind() OutcomeKind { return OutcomeKindNoUpdate }

// Kind implements Outcome.
func (Updated) Kind() OutcomeKind { return OutcomeKindUpdated }

// Kind implements Outcome.
func (Skipped) Kind() OutcomeKind { return OutcomeKindSkipped }

// Kind implements Outcome.
func (Failed) Kind() OutcomeKind { return OutcomeKindFailed }

// RepositoryTarget is one configured repository/branch pair.
type RepositoryTarget struct {
	Path              string
	ConfiguredPath    string
	Branch            string
	PostUpdateCommand []string
}

// Report records the terminal outcome of one repository.
type Report struct {
	Target     RepositoryTarget
	Outcome    Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// BatchReport is the ordered result of a pass.
type BatchReport struct {
	Reports []Report
	counts  map[OutcomeKind]int
}

func newBatchReport(capacity int) BatchReport {
	return BatchReport{Reports: make([]Report, 0, capacity), counts: make(map[OutcomeKind]int)}
}

func (batch *BatchReport) add(report Report) {
	batch.Reports = append(batch.Reports, report)
	batch.counts[report.Outcome.Kind()]++
}

// Count returns how many repositories ended in kind.
func (batch BatchReport) Count(kind OutcomeKind) int {
	return batch.counts[kind]
}

// HasFailures reports whether any repository ended Failed.
func (batch BatchReport) HasFailures() bool {
	return batch.Count(OutcomeKindFailed) > 0
}
