package scheduler

import (
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

// Eligible reports whether a task should be alerted now: due time set
// and elapsed, not completed, not already notified. A past-due task is
// eligible on the very next tick, no grace window.
func Eligible(t model.Task, now time.Time) bool {
	return t.Due != nil && !t.Completed && !t.Notified && !t.Due.After(now)
}

// Sweep runs one scheduler tick against a snapshot: every eligible task
// gets one dispatch attempt, and only a delivered alert marks it
// notified. A failed dispatch leaves the task eligible, so it is
// retried every tick until delivery succeeds.
//
// The input is never mutated. When no flag changed the input slice is
// returned with changed=false so the caller can skip the store write.
func Sweep(tasks []model.Task, now time.Time, gateway notify.Gateway) ([]model.Task, bool) {
	var next []model.Task
	changed := false

	for i, t := range tasks {
		if !Eligible(t, now) {
			continue
		}
		outcome := gateway.Dispatch(notify.Notice{
			Tag:   t.ID,
			Title: t.Title,
			Body:  t.Notes,
		})
		if outcome != notify.OutcomeDelivered {
			continue
		}
		if !changed {
			next = make([]model.Task, len(tasks))
			copy(next, tasks)
			changed = true
		}
		next[i].Notified = true
	}

	if !changed {
		return tasks, false
	}
	return next, true
}
