package model

import (
	"sort"
	"strings"
	"time"
)

type Tab string

const (
	TabAll   Tab = "all"
	TabToday Tab = "today"
)

func (t Tab) IsValid() bool {
	switch t {
	case TabAll, TabToday:
		return true
	default:
		return false
	}
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted:
		return true
	default:
		return false
	}
}

// Project derives the task list shown to the user: tab partition, then
// completion filter, then a case-insensitive title substring match, then
// a stable ascending sort by due time with undated tasks last. It never
// touches its input and yields identical output for identical input.
func Project(tasks []Task, tab Tab, filter Filter, query string, now time.Time) []Task {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if tab == TabToday && !dueToday(t, now) {
			continue
		}
		switch filter {
		case FilterPending:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Due, out[j].Due
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
	return out
}

// dueToday reports whether the task's due time falls on now's calendar
// date in now's location. Undated tasks are never "today".
func dueToday(t Task, now time.Time) bool {
	if t.Due == nil {
		return false
	}
	due := t.Due.In(now.Location())
	y1, m1, d1 := due.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Overdue reports whether a pending task's deadline has passed. The
// projection keeps overdue tasks visible even when alerts cannot be
// delivered.
func Overdue(t Task, now time.Time) bool {
	return t.Due != nil && !t.Completed && !t.Due.After(now)
}
