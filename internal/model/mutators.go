package model

import (
	"strings"
	"time"
)

// The mutators below are pure: they never modify the snapshot they are
// given and return a fresh slice whenever anything changed. A no-op
// returns the input snapshot as-is so callers can skip a redundant save.

// Add prepends a task built from draft. A whitespace-only title is
// rejected and the snapshot is returned unchanged.
func Add(snapshot []Task, draft Draft, now time.Time) []Task {
	if strings.TrimSpace(draft.Title) == "" {
		return snapshot
	}
	next := make([]Task, 0, len(snapshot)+1)
	next = append(next, NewTask(draft, now))
	next = append(next, snapshot...)
	return next
}

// ToggleComplete flips the Completed flag of the task matching id.
func ToggleComplete(snapshot []Task, id string) []Task {
	return mutate(snapshot, id, func(t Task) Task {
		t.Completed = !t.Completed
		return t
	})
}

// Updates carries the fields of an edit. Nil pointers leave the field
// alone; DueSet distinguishes "clear the due time" (DueSet with nil Due)
// from "don't touch it".
type Updates struct {
	Title  *string
	Notes  *string
	Due    *time.Time
	DueSet bool
}

// Edit merges updates into the task matching id. A new due value, moved
// or cleared, resets Notified so the new deadline earns a fresh
// reminder; re-stating the identical due or editing unrelated fields
// leaves Notified untouched. An empty title update is ignored, keeping
// the non-empty-title invariant.
func Edit(snapshot []Task, id string, updates Updates) []Task {
	return mutate(snapshot, id, func(t Task) Task {
		if updates.Title != nil {
			if title := strings.TrimSpace(*updates.Title); title != "" {
				t.Title = title
			}
		}
		if updates.Notes != nil {
			t.Notes = strings.TrimSpace(*updates.Notes)
		}
		if updates.DueSet && !sameDue(t.Due, updates.Due) {
			t.Due = updates.Due
			t.Notified = false
		}
		return t
	})
}

// MarkNotified records a delivered reminder for the task matching id.
func MarkNotified(snapshot []Task, id string) []Task {
	return mutate(snapshot, id, func(t Task) Task {
		t.Notified = true
		return t
	})
}

// Remove drops the task matching id; absent id is a no-op.
func Remove(snapshot []Task, id string) []Task {
	idx := indexOf(snapshot, id)
	if idx < 0 {
		return snapshot
	}
	next := make([]Task, 0, len(snapshot)-1)
	next = append(next, snapshot[:idx]...)
	next = append(next, snapshot[idx+1:]...)
	return next
}

// ClearAll returns the empty snapshot. Confirming this destructive
// action is the caller's job.
func ClearAll(snapshot []Task) []Task {
	return []Task{}
}

func mutate(snapshot []Task, id string, apply func(Task) Task) []Task {
	idx := indexOf(snapshot, id)
	if idx < 0 {
		return snapshot
	}
	next := make([]Task, len(snapshot))
	copy(next, snapshot)
	next[idx] = apply(next[idx])
	return next
}

func indexOf(snapshot []Task, id string) int {
	for i, t := range snapshot {
		if t.ID == id {
			return i
		}
	}
	return -1
}
