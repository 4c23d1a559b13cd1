package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The model proposes operations by name with JSON arguments. ParseOperation
// is the only way in: unknown names and unknown fields are rejected, so the
// executor only ever sees shapes defined here.

// Tool names as exposed to the model.
const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolUpdateTask   = "update_task"
	ToolDeleteTask   = "delete_task"
	ToolFindTask     = "find_task"
)

type AddArgs struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

type ListArgs struct {
	Status   string `json:"status,omitempty"` // all, pending, completed
	Priority string `json:"priority,omitempty"`
}

// TargetArgs references an existing task, either by id or by a free-text
// description to resolve fuzzily.
type TargetArgs struct {
	TaskID    int    `json:"task_id,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type UpdateArgs struct {
	TargetArgs
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Completed     *bool   `json:"completed,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	RemoveDueDate bool    `json:"remove_due_date,omitempty"`
}

type FindArgs struct {
	Query string `json:"query"`
}

// Operation is the decoded proposal; exactly one member is set, matching Name.
type Operation struct {
	Name     string
	Add      *AddArgs
	List     *ListArgs
	Complete *TargetArgs
	Update   *UpdateArgs
	Delete   *TargetArgs
	Find     *FindArgs
}

func decodeStrict(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ParseOperation decodes a named tool call into an Operation. It fails on
// names outside the known set and on arguments with unexpected fields.
func ParseOperation(name string, raw json.RawMessage) (Operation, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	op := Operation{Name: name}
	var err error
	switch name {
	case ToolAddTask:
		op.Add = &AddArgs{}
		err = decodeStrict(raw, op.Add)
	case ToolListTasks:
		op.List = &ListArgs{}
		err = decodeStrict(raw, op.List)
	case ToolCompleteTask:
		op.Complete = &TargetArgs{}
		err = decodeStrict(raw, op.Complete)
	case ToolUpdateTask:
		op.Update = &UpdateArgs{}
		err = decodeStrict(raw, op.Update)
	case ToolDeleteTask:
		op.Delete = &TargetArgs{}
		err = decodeStrict(raw, op.Delete)
	case ToolFindTask:
		op.Find = &FindArgs{}
		err = decodeStrict(raw, op.Find)
	default:
		return Operation{}, fmt.Errorf("unknown operation %q", name)
	}
	if err != nil {
		return Operation{}, fmt.Errorf("decode %s arguments: %w", name, err)
	}
	return op, nil
}
