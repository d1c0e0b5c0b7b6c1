// Package quota holds the plan-based note creation policy. The policy
// itself is pure; the atomic enforcement around it lives in the note
// store's create transaction.
package quota

import "note-service/internal/model"

// FreeNoteLimit is the note-count ceiling for free-plan tenants
const FreeNoteLimit = 3

// CanCreate reports whether a tenant on the given plan may create
// another note when it currently owns count notes.
func CanCreate(plan model.Plan, count int64) bool {
	if plan == model.PlanPro {
		return true
	}
	return count < FreeNoteLimit
}
