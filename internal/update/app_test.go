package update

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
)

type memStore struct {
	tasks []model.Task
	saves int
}

func (s *memStore) Load() []model.Task { return s.tasks }

func (s *memStore) Save(tasks []model.Task) error {
	s.tasks = tasks
	s.saves++
	return nil
}

func grantedGateway(outcome notify.Outcome) notify.FuncGateway {
	return notify.FuncGateway{
		PermissionFunc: func() notify.Permission { return notify.PermissionGranted },
		DispatchFunc:   func(notify.Notice) notify.Outcome { return outcome },
	}
}

func testModel(store *memStore) Model {
	t0 := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	m := NewModelWithRuntime(store, grantedGateway(notify.OutcomeDelivered), nil, Config{DesktopNotifications: true})
	m.now = func() time.Time { return t0 }
	return m
}

func runPalette(t *testing.T, m Model, input string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next := updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(input)})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	if m.Tab != model.TabAll {
		t.Fatalf("expected default tab %q, got %q", model.TabAll, m.Tab)
	}
	if m.Filter != model.FilterAll {
		t.Fatalf("expected default filter %q, got %q", model.FilterAll, m.Filter)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesTab(t *testing.T) {
	m := testModel(&memStore{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.Tab != model.TabToday {
		t.Fatalf("expected today tab, got %q", next.Tab)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	next = updated.(Model)
	if next.Tab != model.TabAll {
		t.Fatalf("expected all tab, got %q", next.Tab)
	}
}

func TestUpdateFilterCycle(t *testing.T) {
	m := testModel(&memStore{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	next := updated.(Model)
	if next.Filter != model.FilterPending {
		t.Fatalf("expected pending filter, got %q", next.Filter)
	}
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	next = updated.(Model)
	if next.Filter != model.FilterCompleted {
		t.Fatalf("expected completed filter, got %q", next.Filter)
	}
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	next = updated.(Model)
	if next.Filter != model.FilterAll {
		t.Fatalf("expected all filter, got %q", next.Filter)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := testModel(&memStore{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestPaletteAddPersistsTask(t *testing.T) {
	store := &memStore{}
	m := testModel(store)

	next := runPalette(t, m, "add Buy milk due:2026-02-10 notes:oat")
	if len(next.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(next.Tasks))
	}
	task := next.Tasks[0]
	if task.Title != "Buy milk" || task.Notes != "oat" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Due == nil || task.Due.Format("2006-01-02") != "2026-02-10" {
		t.Fatalf("unexpected due: %v", task.Due)
	}
	if store.saves != 1 {
		t.Fatalf("expected one save, got %d", store.saves)
	}
	if next.Palette.Active {
		t.Fatal("expected palette closed after execution")
	}
	if !strings.Contains(next.Status.Text, "added task") {
		t.Fatalf("unexpected status: %q", next.Status.Text)
	}
}

func TestPaletteAddRejectsBadDue(t *testing.T) {
	store := &memStore{}
	m := testModel(store)

	next := runPalette(t, m, "add Buy milk due:soon")
	if len(next.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(next.Tasks))
	}
	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
}

func TestPaletteDoneTogglesByPosition(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add First")
	m = runPalette(t, m, "add Second")

	next := runPalette(t, m, "done 1")
	visible := next.visible()
	if !visible[0].Completed {
		t.Fatalf("expected first visible task completed: %+v", visible)
	}

	next = runPalette(t, next, "done 9")
	if !next.Status.IsError {
		t.Fatalf("expected error for out-of-range target, got %+v", next.Status)
	}
}

func TestPaletteEditDueClearsReminderState(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Pay bill due:2026-02-09T11:00")
	m.Tasks[0].Notified = true

	next := runPalette(t, m, "edit 1 due:2026-02-11T09:00")
	if next.Tasks[0].Notified {
		t.Fatal("expected notified reset after due change")
	}
	if next.Tasks[0].Due.Format("2006-01-02 15:04") != "2026-02-11 09:00" {
		t.Fatalf("unexpected due: %v", next.Tasks[0].Due)
	}

	next = runPalette(t, next, "edit 1 due:none")
	if next.Tasks[0].Due != nil {
		t.Fatalf("expected due cleared, got %v", next.Tasks[0].Due)
	}
}

func TestPaletteDeleteRemovesTask(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Only task")

	next := runPalette(t, m, "del 1")
	if len(next.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(next.Tasks))
	}
	if len(store.tasks) != 0 {
		t.Fatalf("expected empty persisted snapshot, got %d", len(store.tasks))
	}
}

func TestPaletteClearRequiresConfirmation(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Keep me")

	next := runPalette(t, m, "clear")
	if !next.PendingClear {
		t.Fatal("expected pending clear confirmation")
	}
	if len(next.Tasks) != 1 {
		t.Fatal("clear must not apply before confirmation")
	}

	updated, _ := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	cancelled := updated.(Model)
	if cancelled.PendingClear || len(cancelled.Tasks) != 1 {
		t.Fatalf("expected cancelled clear, got %+v", cancelled.Status)
	}

	next = runPalette(t, cancelled, "clear")
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	cleared := updated.(Model)
	if len(cleared.Tasks) != 0 {
		t.Fatalf("expected all tasks cleared, got %d", len(cleared.Tasks))
	}
}

func TestPaletteExportWritesSnapshot(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m.ExportDir = t.TempDir()
	m = runPalette(t, m, "add Backup me")

	next := runPalette(t, m, "export")
	if next.Status.IsError {
		t.Fatalf("unexpected export error: %q", next.Status.Text)
	}
	if !strings.Contains(next.Status.Text, "exported to") {
		t.Fatalf("unexpected export status: %q", next.Status.Text)
	}
}

func TestPaletteNotifyNegotiatesPermission(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	var seen notify.Permission
	m.OnConsent = func(p notify.Permission) { seen = p }

	next := runPalette(t, m, "notify on")
	if next.Permission != notify.PermissionGranted {
		t.Fatalf("expected granted permission, got %q", next.Permission)
	}
	if seen != notify.PermissionGranted {
		t.Fatalf("expected consent callback, got %q", seen)
	}

	next = runPalette(t, next, "notify off")
	if !next.Muted {
		t.Fatal("expected notifications muted")
	}
}

func TestTickSweepsAndPersistsOnlyOnChange(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	due := time.Date(2026, 2, 9, 11, 0, 0, 0, time.UTC)
	m.Tasks = []model.Task{{ID: "a", Title: "Pay bill", Due: &due, CreatedAt: due.Add(-time.Hour)}}

	updated, _ := m.Update(TickMsg{At: due.Add(time.Minute)})
	next := updated.(Model)
	if !next.Tasks[0].Notified {
		t.Fatal("expected task notified after sweep")
	}
	if store.saves != 1 {
		t.Fatalf("expected one save after delivery, got %d", store.saves)
	}
	if len(next.Notices) != 1 || next.Notices[0].Title != "Pay bill" {
		t.Fatalf("unexpected notices: %+v", next.Notices)
	}

	updated, _ = next.Update(TickMsg{At: due.Add(2 * time.Minute)})
	next = updated.(Model)
	if store.saves != 1 {
		t.Fatalf("idle tick must not persist, got %d saves", store.saves)
	}
}

func TestTickSkipsSweepWhenMuted(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	due := time.Date(2026, 2, 9, 11, 0, 0, 0, time.UTC)
	m.Tasks = []model.Task{{ID: "a", Title: "Pay bill", Due: &due, CreatedAt: due.Add(-time.Hour)}}
	m.Muted = true

	updated, _ := m.Update(TickMsg{At: due.Add(time.Minute)})
	next := updated.(Model)
	if next.Tasks[0].Notified {
		t.Fatal("muted model must not dispatch")
	}
	if store.saves != 0 {
		t.Fatalf("expected no save, got %d", store.saves)
	}
}

func TestCursorNavigationTracksSelection(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add First")
	m = runPalette(t, m, "add Second")
	m.ensureCursor()

	first := m.visible()[0].ID
	second := m.visible()[1].ID
	if m.SelectedTaskID != first {
		t.Fatalf("expected selection %q, got %q", first, m.SelectedTaskID)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	next := updated.(Model)
	if next.SelectedTaskID != second {
		t.Fatalf("expected selection %q, got %q", second, next.SelectedTaskID)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	next = updated.(Model)
	if next.SelectedTaskID != first {
		t.Fatalf("expected selection %q, got %q", first, next.SelectedTaskID)
	}
}

func TestSpaceTogglesAndDeleteRemovesSelection(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Only task")
	m.ensureCursor()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	next := updated.(Model)
	if !next.Tasks[0].Completed {
		t.Fatal("expected task completed after space")
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	next = updated.(Model)
	if len(next.Tasks) != 0 {
		t.Fatalf("expected task deleted, got %d", len(next.Tasks))
	}
}

func TestSearchFiltersVisibleTasks(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Water plants")
	m = runPalette(t, m, "add Pay rent")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	next := updated.(Model)
	if !next.SearchActive {
		t.Fatal("expected search active")
	}
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("rent")})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	visible := next.visible()
	if len(visible) != 1 || visible[0].Title != "Pay rent" {
		t.Fatalf("unexpected search result: %+v", visible)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	next = updated.(Model)
	if next.Query != "" {
		t.Fatalf("expected query cleared on esc, got %q", next.Query)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	m = runPalette(t, m, "add Water plants due:2026-02-09T18:00")
	m.Status = StatusBar{Text: "all good"}

	out := m.View()
	if !strings.Contains(out, "Water plants") {
		t.Fatalf("expected task title in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
	if !strings.Contains(out, "1/1 pending") {
		t.Fatalf("expected pending count in output: %q", out)
	}
}

func TestInitWithoutEngineHasNoTickCmd(t *testing.T) {
	store := &memStore{}
	m := testModel(store)
	if cmd := m.Init(); cmd != nil {
		t.Fatal("expected nil init cmd without engine")
	}
}
