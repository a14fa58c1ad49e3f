// Package lifecycle holds the status vocabulary shared by every request
// domain and the policy deciding which transitions an administrator may make.
package lifecycle

import (
	"time"
)

// State is the part of a record an administrator is allowed to change.
type State struct {
	Status     Status
	Curated    CuratedFields
	AdminNotes string
}

// Change carries the edits of a single review. Nil fields keep the current value.
type Change struct {
	Status     *Status
	Curated    *CuratedFields
	AdminNotes *string
}

type Transition struct {
	From  Status
	To    Status
	Actor string
	At    time.Time
}

// Changed reports whether the transition moved the record to another status.
func (t Transition) Changed() bool {
	return t.From != t.To
}

type Policy struct {
	// ForwardOnly rejects moves to an earlier status and moves out of a
	// terminal status.
	ForwardOnly bool
}

func NewPolicy(forwardOnly bool) Policy {
	return Policy{ForwardOnly: forwardOnly}
}

// ValidateTransition checks a move from current to next for a record whose
// curated projection would be curated after the move. It has no side effects.
func (p Policy) ValidateTransition(d Domain, current, next Status, curated CuratedFields) error {
	if _, ok := vocabularies[d]; !ok {
		return ErrUnknownDomain
	}
	if !d.Has(current) {
		return unknownStatus(d, current)
	}
	if !d.Has(next) {
		return unknownStatus(d, next)
	}

	if p.ForwardOnly && current != next {
		if current.IsTerminal() {
			return ErrTerminalStatus
		}
		if d.rank(next) < d.rank(current) {
			return ErrBackwardTransition
		}
	}

	if d.IsPublic(next) {
		if missing := curated.Missing(); len(missing) > 0 {
			return &ValidationError{Status: next, Missing: missing}
		}
	}

	return nil
}

// ApplyTransition validates the change against the current state and
// returns the resulting state. The input state is never modified, so a
// rejected change leaves the caller's record as it was.
func (p Policy) ApplyTransition(d Domain, current State, change Change, actor string, now time.Time) (State, Transition, error) {
	next := current
	if change.Status != nil {
		next.Status = *change.Status
	}
	if change.Curated != nil {
		next.Curated = *change.Curated
	}
	if change.AdminNotes != nil {
		next.AdminNotes = *change.AdminNotes
	}

	if err := p.ValidateTransition(d, current.Status, next.Status, next.Curated); err != nil {
		return current, Transition{}, err
	}

	return next, Transition{From: current.Status, To: next.Status, Actor: actor, At: now}, nil
}
