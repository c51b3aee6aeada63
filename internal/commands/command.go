package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeEdit   Type = "edit"
	TypeDelete Type = "del"
	TypeClear  Type = "clear"
	TypeExport Type = "export"
	TypeNotify Type = "notify"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
	// Due and Notes come from due:/notes: tokens; values with spaces
	// are not supported in palette input, the edit form handles those.
	Due   string
	Notes string
}

type DoneArgs struct {
	Target string
}

type EditArgs struct {
	Target string
	// Due is the new value; "none" clears the deadline.
	Due string
}

type DeleteArgs struct {
	Target string
}

type NotifyArgs struct {
	Enabled bool
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *DoneArgs
	Edit   *EditArgs
	Delete *DeleteArgs
	Notify *NotifyArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDelete, "delete", "rm":
		return parseDelete(input, args)
	case TypeClear:
		return Command{Type: TypeClear, Raw: input}, nil
	case TypeExport:
		return Command{Type: TypeExport, Raw: input}, nil
	case TypeNotify:
		return parseNotify(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	titleWords := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "due:"):
			out.Due = strings.TrimSpace(arg[len("due:"):])
		case strings.HasPrefix(lower, "notes:"):
			out.Notes = strings.TrimSpace(arg[len("notes:"):])
		default:
			titleWords = append(titleWords, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(titleWords, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task number"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: args[0]}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task number and due:<when|none>"}
	}
	target := args[0]
	due := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "due:") {
			due = strings.TrimSpace(arg[len("due:"):])
		}
	}
	if due == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires due:<when|none>"}
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Target: target, Due: due}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "del requires a task number"}
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Target: args[0]}}, nil
}

func parseNotify(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "notify requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: true}}, nil
	case "off":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "notify requires on or off"}
	}
}
