package model

import (
	"reflect"
	"testing"
	"time"
)

func projectionFixture() ([]Task, time.Time) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	morning := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 2, 9, 20, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	tasks := []Task{
		{ID: "undated-1", Title: "Read inbox", CreatedAt: now},
		{ID: "tomorrow", Title: "Prepare review", Due: &tomorrow, CreatedAt: now},
		{ID: "evening", Title: "Call plumber", Due: &evening, CreatedAt: now},
		{ID: "undated-2", Title: "Refill printer", CreatedAt: now},
		{ID: "morning", Title: "Pay bill", Due: &morning, Completed: true, CreatedAt: now},
	}
	return tasks, now
}

func ids(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestProjectSortsDueAscendingUndatedLast(t *testing.T) {
	tasks, now := projectionFixture()
	got := ids(Project(tasks, TabAll, FilterAll, "", now))
	want := []string{"morning", "evening", "tomorrow", "undated-1", "undated-2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
}

func TestProjectStableAmongUndated(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "u1", Title: "one", CreatedAt: now},
		{ID: "u2", Title: "two", CreatedAt: now},
		{ID: "u3", Title: "three", CreatedAt: now},
	}
	got := ids(Project(tasks, TabAll, FilterAll, "", now))
	want := []string{"u1", "u2", "u3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected original relative order %v, got %v", want, got)
	}
}

func TestProjectTodayTab(t *testing.T) {
	tasks, now := projectionFixture()
	got := ids(Project(tasks, TabToday, FilterAll, "", now))
	want := []string{"morning", "evening"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected today partition: got %v want %v", got, want)
	}
}

func TestProjectFilter(t *testing.T) {
	tasks, now := projectionFixture()

	pending := Project(tasks, TabAll, FilterPending, "", now)
	for _, task := range pending {
		if task.Completed {
			t.Fatalf("pending filter leaked completed task %s", task.ID)
		}
	}

	completed := Project(tasks, TabAll, FilterCompleted, "", now)
	if len(completed) != 1 || completed[0].ID != "morning" {
		t.Fatalf("unexpected completed filter result: %v", ids(completed))
	}
}

func TestProjectQueryCaseInsensitive(t *testing.T) {
	tasks, now := projectionFixture()
	got := ids(Project(tasks, TabAll, FilterAll, "PAY", now))
	if !reflect.DeepEqual(got, []string{"morning"}) {
		t.Fatalf("unexpected query result: %v", got)
	}

	got = ids(Project(tasks, TabAll, FilterAll, "  ", now))
	if len(got) != len(tasks) {
		t.Fatalf("expected blank query to match everything, got %v", got)
	}
}

func TestProjectIsPure(t *testing.T) {
	tasks, now := projectionFixture()
	before := ids(tasks)

	first := Project(tasks, TabToday, FilterPending, "call", now)
	second := Project(tasks, TabToday, FilterPending, "call", now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection not deterministic: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(ids(tasks), before) {
		t.Fatal("projection mutated its input")
	}
}
