package domain

import "time"

type DisputeStatus string

const (
    DisputeDraft      DisputeStatus = "draft"
    DisputeSubmitted  DisputeStatus = "submitted"
    DisputeInProgress DisputeStatus = "in_progress"
    DisputeResolved   DisputeStatus = "resolved"
    DisputeRejected   DisputeStatus = "rejected"
)

// ResponseWindow is the FCRA reinvestigation period a bureau has to answer a
// submitted dispute.
const ResponseWindow = 30 * 24 * time.Hour

var disputeTransitions = map[DisputeStatus][]DisputeStatus{
    DisputeDraft:      {DisputeSubmitted},
    DisputeSubmitted:  {DisputeInProgress, DisputeResolved, DisputeRejected},
    DisputeInProgress: {DisputeResolved, DisputeRejected},
}

func (s DisputeStatus) Valid() bool {
    switch s {
    case DisputeDraft, DisputeSubmitted, DisputeInProgress, DisputeResolved, DisputeRejected:
        return true
    }
    return false
}

func (s DisputeStatus) Terminal() bool {
    return s == DisputeResolved || s == DisputeRejected
}

func CanTransition(from, to DisputeStatus) bool {
    for _, next := range disputeTransitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// Transition moves the dispute to status `to`, stamping the lifecycle
// timestamps. The dispute is left untouched on error.
func (d *Dispute) Transition(to DisputeStatus, outcome string, now time.Time) error {
    if !to.Valid() {
        return Invalidf("status", "unknown dispute status %q", to)
    }
    if !CanTransition(d.Status, to) {
        return Conflictf("dispute cannot move from %s to %s", d.Status, to)
    }
    now = now.UTC()
    switch to {
    case DisputeSubmitted:
        due := now.Add(ResponseWindow)
        d.SubmittedAt = &now
        d.ResponseDueAt = &due
    case DisputeResolved, DisputeRejected:
        d.ResolvedAt = &now
        d.Outcome = outcome
    }
    d.Status = to
    d.UpdatedAt = now
    return nil
}

// Overdue reports whether the bureau has missed its response window.
func (d Dispute) Overdue(now time.Time) bool {
    if d.Status != DisputeSubmitted && d.Status != DisputeInProgress {
        return false
    }
    return d.ResponseDueAt != nil && now.After(*d.ResponseDueAt)
}
