package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	ID        string
	Title     string
	Due       string
	Completed bool
	Overdue   bool
	Notified  bool
}

type TaskListData struct {
	Tab        string
	Filter     string
	Query      string
	Items      []TaskItemData
	SelectedID string
}

type TaskDetailData struct {
	Title     string
	Due       string
	Created   string
	Completed bool
	Overdue   bool
	Notified  bool
	NotesView string
}

type NoticeData struct {
	Stamp string
	Title string
	Body  string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderHeader(tab string, pending, total int, permission string) string {
	return fmt.Sprintf("remindd | %s | %d/%d pending | notifications: %s", tab, pending, total, permission)
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks (%s / %s):\n", data.Tab, data.Filter))
	if data.Query != "" {
		b.WriteString(fmt.Sprintf("search: %s\n", data.Query))
	}
	if len(data.Items) == 0 {
		b.WriteString("  (none)")
		return b.String()
	}
	for i, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %2d %s %s%s", cursor, i+1, checkbox(item.Completed), dueBadge(item), item.Title))
		if item.Due != "" {
			b.WriteString(fmt.Sprintf(" due:%s", item.Due))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	if data.Due != "" {
		line := fmt.Sprintf("due: %s", data.Due)
		if data.Overdue {
			line += " (overdue)"
		}
		b.WriteString(line + "\n")
	} else {
		b.WriteString("due: (none)\n")
	}
	b.WriteString(fmt.Sprintf("created: %s\n", data.Created))
	b.WriteString(fmt.Sprintf("state: %s", detailState(data)))
	if data.NotesView != "" {
		b.WriteString("\n\nnotes:\n" + data.NotesView)
	}
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotices(items []NoticeData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("notices:\n")
	for _, n := range items {
		b.WriteString(fmt.Sprintf("%s %s", n.Stamp, n.Title))
		if n.Body != "" {
			b.WriteString(" - " + n.Body)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func detailState(data TaskDetailData) string {
	switch {
	case data.Completed:
		return "completed"
	case data.Overdue:
		return "overdue"
	case data.Notified:
		return "notified"
	default:
		return "pending"
	}
}

func dueBadge(item TaskItemData) string {
	switch {
	case item.Completed:
		return ""
	case item.Overdue:
		return "! "
	case item.Notified:
		return "* "
	default:
		return ""
	}
}
