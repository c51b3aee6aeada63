package update

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/views"
)

// TaskStore is the persistence surface the app depends on. Load never
// fails; an unreadable slot yields an empty collection.
type TaskStore interface {
	Load() []model.Task
	Save(tasks []model.Task) error
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	All    string
	Today  string
	Filter string
	Search string
	Help   string
	Quit   string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notice struct {
	At    time.Time
	Title string
	Body  string
}

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

type TickMsg struct {
	At time.Time
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type Model struct {
	Tasks          []model.Task
	Tab            model.Tab
	Filter         model.Filter
	Query          string
	Cursor         int
	SelectedTaskID string

	Store     TaskStore
	Gateway   notify.Gateway
	Engine    *scheduler.Engine
	ExportDir string

	Permission notify.Permission
	Muted      bool
	OnConsent  func(notify.Permission)

	Palette      CommandPaletteState
	SearchActive bool
	HelpVisible  bool
	PendingClear bool
	Notices      []Notice
	Status       StatusBar
	Keys         GlobalKeyMap
	Quitting     bool
	LastError    error

	commandInput textinput.Model
	searchInput  textinput.Model
	notesView    viewport.Model
	helpModel    help.Model

	now func() time.Time
}

func NewModel() Model {
	m := Model{
		Tab:     model.TabAll,
		Filter:  model.FilterAll,
		Gateway: notify.NoopGateway{},
		Keys: GlobalKeyMap{
			All:    "1",
			Today:  "2",
			Filter: "f",
			Search: "s",
			Help:   "?",
			Quit:   "q",
		},
		now: time.Now,
	}
	m.initComponents()
	return m
}

func NewModelWithRuntime(store TaskStore, gateway notify.Gateway, engine *scheduler.Engine, cfg Config) Model {
	m := NewModel()
	m.Store = store
	m.Engine = engine
	m.ExportDir = cfg.ExportDir
	m.Muted = !cfg.DesktopNotifications
	m.Permission = notify.Permission(cfg.NotificationConsent)
	if gateway != nil {
		m.Gateway = gateway
	}
	if store != nil {
		m.Tasks = store.Load()
	}
	return m
}

func (m *Model) initComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 42

	m.notesView = viewport.New(54, 8)
	m.helpModel = help.New()
}

func (m Model) Init() tea.Cmd {
	if m.Engine != nil {
		return waitForTickCmd(m.Engine.C())
	}
	return nil
}

func waitForTickCmd(ch <-chan time.Time) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		at, ok := <-ch
		if !ok {
			return nil
		}
		return TickMsg{At: at}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		m.ensureCursor()

		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if m.SearchActive {
			return m.handleSearchKey(typed), nil
		}
		if m.PendingClear {
			return m.handleClearConfirmKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.All:
			m.Tab = model.TabAll
			m.Cursor = 0
			m.ensureCursor()
			return m, nil
		case m.Keys.Today:
			m.Tab = model.TabToday
			m.Cursor = 0
			m.ensureCursor()
			return m, nil
		case m.Keys.Filter:
			m.cycleFilter()
			return m, nil
		case m.Keys.Search:
			m.SearchActive = true
			m.searchInput.SetValue(m.Query)
			m.searchInput.Focus()
			return m, nil
		case "j", "down":
			m.moveCursor(1)
			return m, nil
		case "k", "up":
			m.moveCursor(-1)
			return m, nil
		case " ":
			m.toggleSelected()
			return m, nil
		case "d":
			m.deleteSelected()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil
	case TickMsg:
		return m.onTick(typed.At)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

// onTick runs one reminder sweep. Persistence happens only when a
// dispatch was actually delivered; an idle tick writes nothing.
func (m Model) onTick(at time.Time) (tea.Model, tea.Cmd) {
	if !m.Muted {
		next, changed := scheduler.Sweep(m.Tasks, at, m.Gateway)
		if changed {
			m.recordDeliveries(m.Tasks, next, at)
			m.Tasks = next
			m.persist()
		}
	}
	if m.Engine != nil {
		return m, waitForTickCmd(m.Engine.C())
	}
	return m, nil
}

func (m *Model) recordDeliveries(before, after []model.Task, at time.Time) {
	prior := make(map[string]bool, len(before))
	for _, t := range before {
		prior[t.ID] = t.Notified
	}
	for _, t := range after {
		if t.Notified && !prior[t.ID] {
			m.pushNotice(at, t.Title, t.Notes)
		}
	}
}

func (m *Model) pushNotice(at time.Time, title, body string) {
	m.Notices = append(m.Notices, Notice{At: at, Title: title, Body: body})
	if len(m.Notices) > 20 {
		m.Notices = m.Notices[len(m.Notices)-20:]
	}
}

func (m *Model) persist() {
	if m.Store == nil {
		return
	}
	if err := m.Store.Save(m.Tasks); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("save failed: %v", err), IsError: true}
	}
}

func (m Model) visible() []model.Task {
	return model.Project(m.Tasks, m.Tab, m.Filter, m.Query, m.now())
}

func (m *Model) ensureCursor() {
	visible := m.visible()
	if len(visible) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= len(visible) {
		m.Cursor = len(visible) - 1
	}
	m.SelectedTaskID = visible[m.Cursor].ID
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.ensureCursor()
}

func (m *Model) cycleFilter() {
	switch m.Filter {
	case model.FilterAll:
		m.Filter = model.FilterPending
	case model.FilterPending:
		m.Filter = model.FilterCompleted
	default:
		m.Filter = model.FilterAll
	}
	m.Cursor = 0
	m.ensureCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("filter: %s", m.Filter), IsError: false}
}

func (m *Model) toggleSelected() {
	if m.SelectedTaskID == "" {
		return
	}
	m.Tasks = model.ToggleComplete(m.Tasks, m.SelectedTaskID)
	m.persist()
	m.ensureCursor()
}

func (m *Model) deleteSelected() {
	if m.SelectedTaskID == "" {
		return
	}
	m.Tasks = model.Remove(m.Tasks, m.SelectedTaskID)
	m.persist()
	m.Status = StatusBar{Text: "task deleted", IsError: false}
	m.ensureCursor()
}

func (m Model) handleSearchKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.SearchActive = false
		m.Query = ""
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.ensureCursor()
	case "enter":
		m.Query = strings.TrimSpace(m.searchInput.Value())
		m.SearchActive = false
		m.searchInput.Blur()
		m.Cursor = 0
		m.ensureCursor()
	case "backspace":
		v := m.searchInput.Value()
		if len(v) > 0 {
			m.searchInput.SetValue(v[:len(v)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.searchInput.SetValue(m.searchInput.Value() + string(msg.Runes))
		}
	}
	return m
}

func (m Model) handleClearConfirmKey(msg tea.KeyMsg) Model {
	m.PendingClear = false
	if msg.String() == "y" {
		m.Tasks = model.ClearAll(m.Tasks)
		m.persist()
		m.Cursor = 0
		m.ensureCursor()
		m.Status = StatusBar{Text: "all tasks cleared", IsError: false}
		return m
	}
	m.Status = StatusBar{Text: "clear cancelled", IsError: false}
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	case "backspace":
		v := m.commandInput.Value()
		if len(v) > 0 {
			m.commandInput.SetValue(v[:len(v)-1])
		}
		m.Palette.Input = m.commandInput.Value()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
		}
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			due, err := model.ParseDueInput(dueToken(a.Due), m.now().Location())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognized due value: %s", a.Due)}
			}
			m.Tasks = model.Add(m.Tasks, model.Draft{Title: a.Title, Notes: a.Notes, Due: due}, m.now())
			m.persist()
			m.ensureCursor()
			return commands.Result{Message: fmt.Sprintf("added task: %s", a.Title)}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.Tasks = model.ToggleComplete(m.Tasks, task.ID)
			m.persist()
			m.ensureCursor()
			return commands.Result{Message: fmt.Sprintf("toggled: %s", task.Title)}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			updates := model.Updates{DueSet: true}
			if !strings.EqualFold(a.Due, "none") {
				due, err := model.ParseDueInput(dueToken(a.Due), m.now().Location())
				if err != nil {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognized due value: %s", a.Due)}
				}
				updates.Due = due
			}
			m.Tasks = model.Edit(m.Tasks, task.ID, updates)
			m.persist()
			return commands.Result{Message: fmt.Sprintf("due updated: %s", task.Title)}, nil
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			task, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.Tasks = model.Remove(m.Tasks, task.ID)
			m.persist()
			m.ensureCursor()
			return commands.Result{Message: fmt.Sprintf("deleted: %s", task.Title)}, nil
		},
		Clear: func() (commands.Result, error) {
			m.PendingClear = true
			return commands.Result{Message: "press y to clear all tasks"}, nil
		},
		Export: func() (commands.Result, error) {
			path, err := storage.ExportSnapshot(m.Tasks, m.ExportDir, m.now())
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported to %s", path)}, nil
		},
		Notify: func(a commands.NotifyArgs) (commands.Result, error) {
			if !a.Enabled {
				m.Muted = true
				return commands.Result{Message: "notifications muted"}, nil
			}
			m.Muted = false
			m.Permission = m.Gateway.EnsurePermission()
			if m.OnConsent != nil {
				m.OnConsent(m.Permission)
			}
			switch m.Permission {
			case notify.PermissionGranted:
				return commands.Result{Message: "notifications enabled"}, nil
			case notify.PermissionDenied:
				return commands.Result{Message: "notification permission denied"}, nil
			default:
				return commands.Result{Message: "desktop notifications unsupported here"}, nil
			}
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

// resolveTarget maps a 1-based position in the visible list to a task.
func (m Model) resolveTarget(target string) (model.Task, error) {
	visible := m.visible()
	idx, err := strconv.Atoi(strings.TrimSpace(target))
	if err != nil || idx < 1 || idx > len(visible) {
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at position %s", target)}
	}
	return visible[idx-1], nil
}

// dueToken restores the space in palette due values, which use
// 2006-01-02T15:04 because tokens cannot contain spaces.
func dueToken(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "T", " ")
}

func (m Model) View() string {
	now := m.now()
	visible := m.visible()

	items := make([]views.TaskItemData, 0, len(visible))
	for _, t := range visible {
		items = append(items, views.TaskItemData{
			ID:        t.ID,
			Title:     t.Title,
			Due:       model.FormatDue(t.Due),
			Completed: t.Completed,
			Overdue:   model.Overdue(t, now),
			Notified:  t.Notified,
		})
	}
	listPane := views.RenderTaskList(views.TaskListData{
		Tab:        string(m.Tab),
		Filter:     string(m.Filter),
		Query:      m.Query,
		Items:      items,
		SelectedID: m.SelectedTaskID,
	})
	if m.SearchActive {
		listPane += "\n" + m.searchInput.View()
	}

	detailPane := m.renderDetail(visible, now)
	if p := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input); p != "" {
		detailPane += "\n" + p
	}
	if m.HelpVisible {
		detailPane += "\n" + m.renderHelpView()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	pending := 0
	for _, t := range m.Tasks {
		if !t.Completed {
			pending++
		}
	}

	noticeData := make([]views.NoticeData, 0, len(m.Notices))
	for _, n := range m.Notices {
		noticeData = append(noticeData, views.NoticeData{
			Stamp: n.At.Format("15:04"),
			Title: n.Title,
			Body:  n.Body,
		})
	}

	return views.RenderApp(views.AppData{
		Header:     views.RenderHeader(string(m.Tab), pending, len(m.Tasks), m.permissionLabel()),
		ListPane:   listPane,
		DetailPane: detailPane,
		StatusLine: status,
		Notices:    views.RenderNotices(noticeData),
		Footer: fmt.Sprintf("keys: %s all | %s today | %s filter | %s search | / cmd | space done | d delete | %s help | %s quit",
			m.Keys.All, m.Keys.Today, m.Keys.Filter, m.Keys.Search, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderDetail(visible []model.Task, now time.Time) string {
	if m.Cursor >= len(visible) || m.SelectedTaskID == "" {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	t := visible[m.Cursor]
	notesView := ""
	if strings.TrimSpace(t.Notes) != "" {
		m.notesView.SetContent(views.RenderMarkdown(t.Notes))
		notesView = m.notesView.View()
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		Title:     t.Title,
		Due:       model.FormatDue(t.Due),
		Created:   t.CreatedAt.Format("2006-01-02 15:04"),
		Completed: t.Completed,
		Overdue:   model.Overdue(t, now),
		Notified:  t.Notified,
		NotesView: notesView,
	})
}

func (m Model) permissionLabel() string {
	if m.Muted {
		return "off"
	}
	if m.Permission == notify.PermissionUnset {
		return "unset"
	}
	return string(m.Permission)
}

func (m Model) keyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.All, Action: "all tasks tab"},
		{Key: m.Keys.Today, Action: "today tab"},
		{Key: m.Keys.Filter, Action: "cycle filter"},
		{Key: m.Keys.Search, Action: "search"},
		{Key: "/", Action: "command palette"},
		{Key: "j/k", Action: "move selection"},
		{Key: "space", Action: "toggle complete"},
		{Key: "d", Action: "delete task"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) renderHelpView() string {
	bindings := make([]key.Binding, 0, len(m.keyBindings()))
	plain := make([]string, 0, len(m.keyBindings()))
	for _, kb := range m.keyBindings() {
		bindings = append(bindings, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}
