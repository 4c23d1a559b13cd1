package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskmate-backend/internal/tasks"
)

// ProcessTurn is the single entry point for a chat message. A turn runs
// through, in order: pending-confirmation handling, batch detection, the
// model proposal, operation parsing, enhancement, and execution. Recoverable
// failures become clarifying replies; only store failures abort the turn.

const (
	// MaxMessageLen caps a single user message.
	MaxMessageLen = 10000
	// HistoryWindow is how many prior messages the model sees.
	HistoryWindow = 50
)

// Message is one conversation entry as the model sees it.
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCall records an executed operation for the transcript.
type ToolCall struct {
	Name   string `json:"name"`
	Args   any    `json:"arguments,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ConversationStore persists the transcript.
type ConversationStore interface {
	History(ctx context.Context, owner string, conversationID int, limit int) ([]Message, error)
	Append(ctx context.Context, owner string, conversationID int, role, content string, toolCalls []ToolCall) error
}

// ToolProposal is a tool call suggested by the model, still unvalidated.
type ToolProposal struct {
	Name      string
	Arguments json.RawMessage
}

// Proposal is the model's answer: prose, a tool call, or both.
type Proposal struct {
	Text string
	Tool *ToolProposal
}

// Completer produces a proposal for the latest user message given the
// conversation so far.
type Completer interface {
	Propose(ctx context.Context, history []Message, message string) (Proposal, error)
}

// TurnState is the confirmation state carried between turns. The caller
// persists it with the conversation and hands it back on the next message.
type TurnState struct {
	Pending *PendingConfirmation `json:"pending,omitempty"`
}

// TurnResult is everything a turn produced.
type TurnResult struct {
	Reply     string
	ToolCalls []ToolCall
	State     TurnState
}

type Pipeline struct {
	Tasks TaskStore
	Conv  ConversationStore
	LLM   Completer
	Now   func() time.Time
}

// ProcessTurn handles one user message for owner within a conversation.
// It returns an error only when the store fails; everything else is a reply.
func (p *Pipeline) ProcessTurn(ctx context.Context, owner string, conversationID int, state TurnState, message string) (TurnResult, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return TurnResult{}, validationFailure("message", "message is empty")
	}
	if len(msg) > MaxMessageLen {
		return TurnResult{}, validationFailure("message", "message exceeds %d characters", MaxMessageLen)
	}

	if state.Pending != nil {
		switch ClassifyReply(msg) {
		case VerdictNegative:
			return p.finish(ctx, owner, conversationID, msg, CancelMessage(state.Pending.Kind), nil, nil)
		case VerdictAffirmative:
			return p.runPending(ctx, owner, conversationID, msg, state.Pending)
		default:
			// A new instruction supersedes the staged operation.
			slog.Debug("pending confirmation discarded", "kind", state.Pending.Kind)
		}
	}

	if op, ok := DetectBatch(msg); ok {
		return p.stageBatch(ctx, owner, conversationID, msg, op)
	}

	return p.runProposal(ctx, owner, conversationID, msg)
}

// finish appends both sides of the exchange and assembles the result.
func (p *Pipeline) finish(ctx context.Context, owner string, conversationID int, userMsg, reply string, calls []ToolCall, pending *PendingConfirmation) (TurnResult, error) {
	if err := p.Conv.Append(ctx, owner, conversationID, RoleUser, userMsg, nil); err != nil {
		return TurnResult{}, storeFailure(err)
	}
	if err := p.Conv.Append(ctx, owner, conversationID, RoleAssistant, reply, calls); err != nil {
		return TurnResult{}, storeFailure(err)
	}
	return TurnResult{Reply: reply, ToolCalls: calls, State: TurnState{Pending: pending}}, nil
}

// runPending dispatches a confirmed staged operation exactly as staged.
func (p *Pipeline) runPending(ctx context.Context, owner string, conversationID int, msg string, pending *PendingConfirmation) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	now := p.Now()

	switch pending.Kind {
	case PendingBatchDelete, PendingBatchComplete:
		out := exec.RunBatch(ctx, owner, pending.Kind, pending.TaskIDs)
		call := ToolCall{Name: string(pending.Kind), Args: pending.TaskIDs, Result: out.Succeeded}
		if len(out.Failed) > 0 {
			call.Error = fmt.Sprintf("%d of %d failed", len(out.Failed), len(pending.TaskIDs))
		}
		return p.finish(ctx, owner, conversationID, msg, formatBatchOutcome(pending.Kind, out), []ToolCall{call}, nil)

	case PendingDelete:
		t, err := exec.Delete(ctx, owner, pending.taskID())
		if err != nil {
			return p.pendingFailed(ctx, owner, conversationID, msg, pending, err)
		}
		call := ToolCall{Name: ToolDeleteTask, Args: TargetArgs{TaskID: t.ID}, Result: t}
		return p.finish(ctx, owner, conversationID, msg, formatDeleted(t), []ToolCall{call}, nil)

	case PendingComplete:
		t, err := exec.Complete(ctx, owner, pending.taskID())
		if err != nil {
			return p.pendingFailed(ctx, owner, conversationID, msg, pending, err)
		}
		call := ToolCall{Name: ToolCompleteTask, Args: TargetArgs{TaskID: t.ID}, Result: t}
		return p.finish(ctx, owner, conversationID, msg, formatCompleted(t), []ToolCall{call}, nil)

	case PendingUpdate:
		if pending.Update == nil {
			return p.finish(ctx, owner, conversationID, msg, "I lost track of what that change was. Could you tell me again?", nil, nil)
		}
		t, err := exec.Update(ctx, owner, pending.taskID(), *pending.Update)
		if err != nil {
			return p.pendingFailed(ctx, owner, conversationID, msg, pending, err)
		}
		call := ToolCall{Name: ToolUpdateTask, Args: pending.Update, Result: t}
		return p.finish(ctx, owner, conversationID, msg, formatUpdated(t, *pending.Update, now), []ToolCall{call}, nil)
	}

	return p.finish(ctx, owner, conversationID, msg, "I lost track of what you were confirming. Could you tell me again?", nil, nil)
}

func (pc *PendingConfirmation) taskID() int {
	if len(pc.TaskIDs) == 0 {
		return 0
	}
	return pc.TaskIDs[0]
}

// pendingFailed handles a confirmed operation whose target disappeared
// between staging and confirmation.
func (p *Pipeline) pendingFailed(ctx context.Context, owner string, conversationID int, msg string, pending *PendingConfirmation, err error) (TurnResult, error) {
	var te *TurnError
	if errors.As(err, &te) && te.Kind == NotFound {
		stale := &TurnError{Kind: StaleConfirmation, Message: "That task is no longer on your list. It may have been removed since I asked."}
		reply := stale.Message
		if ts, lerr := p.Tasks.List(ctx, owner, tasks.Filter{}); lerr == nil {
			reply += "\n\n" + FormatTaskList(ts, p.Now())
		}
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}
	if errors.As(err, &te) && te.Recoverable() {
		return p.finish(ctx, owner, conversationID, msg, te.Message, nil, nil)
	}
	return TurnResult{}, err
}

// stageBatch resolves a detected bulk request into an itemized confirmation.
func (p *Pipeline) stageBatch(ctx context.Context, owner string, conversationID int, msg string, op BatchOp) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	ts, err := exec.List(ctx, owner, op.Filter)
	if err != nil {
		return TurnResult{}, err
	}
	if len(ts) == 0 {
		reply := fmt.Sprintf("There's nothing to do: no tasks match \"%s\".", op.Describe())
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}

	kind := PendingBatchComplete
	if op.Action == BatchDelete {
		kind = PendingBatchDelete
	}
	ids := make([]int, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	pending := &PendingConfirmation{
		Kind:      kind,
		TaskIDs:   ids,
		Summary:   op.Describe(),
		CreatedAt: p.Now(),
	}
	return p.finish(ctx, owner, conversationID, msg, confirmBatch(op, ts, p.Now()), nil, pending)
}

// runProposal asks the model what the message means and acts on the answer.
func (p *Pipeline) runProposal(ctx context.Context, owner string, conversationID int, msg string) (TurnResult, error) {
	history, err := p.Conv.History(ctx, owner, conversationID, HistoryWindow)
	if err != nil {
		return TurnResult{}, storeFailure(err)
	}

	prop, err := p.LLM.Propose(ctx, history, msg)
	if err != nil {
		slog.Error("completion failed", "error", err)
		reply := "I'm having trouble processing your request right now. Please try again in a moment."
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}

	if prop.Tool == nil {
		reply := strings.TrimSpace(prop.Text)
		if reply == "" {
			reply = "I'm not sure what you'd like me to do. You can ask me to add, list, complete, update or delete tasks."
		}
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}

	op, err := ParseOperation(prop.Tool.Name, prop.Tool.Arguments)
	if err != nil {
		slog.Warn("rejected model operation", "name", prop.Tool.Name, "error", err)
		reply := "I didn't quite follow that. Could you rephrase what you'd like me to do with your tasks?"
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}

	return p.runOperation(ctx, owner, conversationID, msg, op)
}

// runOperation enhances and executes a parsed operation.
func (p *Pipeline) runOperation(ctx context.Context, owner string, conversationID int, msg string, op Operation) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	now := p.Now()

	switch op.Name {
	case ToolAddTask:
		ra, err := EnhanceAdd(*op.Add, now)
		if err != nil {
			return p.reject(ctx, owner, conversationID, msg, err)
		}
		t, err := exec.Add(ctx, owner, ra)
		if err != nil {
			return p.reject(ctx, owner, conversationID, msg, err)
		}
		call := ToolCall{Name: ToolAddTask, Args: ra, Result: t}
		return p.finish(ctx, owner, conversationID, msg, formatAdded(t, now), []ToolCall{call}, nil)

	case ToolListTasks:
		f, err := listFilter(*op.List)
		if err != nil {
			return p.reject(ctx, owner, conversationID, msg, err)
		}
		ts, err := exec.List(ctx, owner, f)
		if err != nil {
			return p.reject(ctx, owner, conversationID, msg, err)
		}
		call := ToolCall{Name: ToolListTasks, Args: op.List, Result: len(ts)}
		return p.finish(ctx, owner, conversationID, msg, FormatTaskList(ts, now), []ToolCall{call}, nil)

	case ToolFindTask:
		return p.runFind(ctx, owner, conversationID, msg, *op.Find)

	case ToolCompleteTask:
		return p.runTargeted(ctx, owner, conversationID, msg, *op.Complete, PendingComplete)

	case ToolDeleteTask:
		return p.runTargeted(ctx, owner, conversationID, msg, *op.Delete, PendingDelete)

	case ToolUpdateTask:
		return p.runUpdate(ctx, owner, conversationID, msg, op.Update)
	}

	// ParseOperation guarantees the name is known; this is unreachable.
	return TurnResult{}, fmt.Errorf("unhandled operation %q", op.Name)
}

func (p *Pipeline) runFind(ctx context.Context, owner string, conversationID int, msg string, args FindArgs) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	candidates, err := exec.List(ctx, owner, tasks.Filter{})
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return p.reject(ctx, owner, conversationID, msg,
			parseFailure("query", "What should I search for?"))
	}
	m, ok := BestMatch(query, candidates)
	if !ok {
		reply := fmt.Sprintf("I couldn't find anything matching %q.", query)
		if len(candidates) > 0 {
			reply += "\n\n" + FormatTaskList(candidates, p.Now())
		}
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}
	call := ToolCall{Name: ToolFindTask, Args: args, Result: m.Task}
	return p.finish(ctx, owner, conversationID, msg, formatFound(m, p.Now()), []ToolCall{call}, nil)
}

// runTargeted resolves the task a complete or delete refers to and either
// executes or stages it. Deletes always stage; completes execute immediately
// when the match is certain.
func (p *Pipeline) runTargeted(ctx context.Context, owner string, conversationID int, msg string, target TargetArgs, kind PendingKind) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	now := p.Now()

	candidates, err := exec.List(ctx, owner, tasks.Filter{})
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	m, err := ResolveTarget(target, candidates)
	if err != nil {
		return p.rejectWithList(ctx, owner, conversationID, msg, err, candidates)
	}

	if kind == PendingDelete || !m.Certain() {
		pending := &PendingConfirmation{
			Kind:      kind,
			TaskIDs:   []int{m.Task.ID},
			CreatedAt: now,
		}
		reply := confirmAmbiguous("complete", m)
		if kind == PendingDelete {
			reply = confirmDelete(m.Task)
		}
		pending.Summary = reply
		return p.finish(ctx, owner, conversationID, msg, reply, nil, pending)
	}

	t, err := exec.Complete(ctx, owner, m.Task.ID)
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	call := ToolCall{Name: ToolCompleteTask, Args: TargetArgs{TaskID: t.ID}, Result: t}
	return p.finish(ctx, owner, conversationID, msg, formatCompleted(t), []ToolCall{call}, nil)
}

// runUpdate handles update_task. The target is resolved before the field
// changes are validated: when both the reference and a field are bad, the
// user is asked which task they meant, not about the field.
func (p *Pipeline) runUpdate(ctx context.Context, owner string, conversationID int, msg string, args *UpdateArgs) (TurnResult, error) {
	exec := &Executor{Store: p.Tasks}
	now := p.Now()

	candidates, err := exec.List(ctx, owner, tasks.Filter{})
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	m, err := ResolveTarget(args.TargetArgs, candidates)
	if err != nil {
		return p.rejectWithList(ctx, owner, conversationID, msg, err, candidates)
	}

	ru, err := EnhanceUpdate(args, now)
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	if ru.Empty() {
		reply := "What would you like to change about that task? You can set the title, description, priority or due date."
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}

	if !m.Certain() {
		pending := &PendingConfirmation{
			Kind:      PendingUpdate,
			TaskIDs:   []int{m.Task.ID},
			Update:    &ru,
			CreatedAt: now,
		}
		reply := confirmAmbiguous("update", m)
		pending.Summary = reply
		return p.finish(ctx, owner, conversationID, msg, reply, nil, pending)
	}

	t, err := exec.Update(ctx, owner, m.Task.ID, ru)
	if err != nil {
		return p.reject(ctx, owner, conversationID, msg, err)
	}
	call := ToolCall{Name: ToolUpdateTask, Args: ru, Result: t}
	return p.finish(ctx, owner, conversationID, msg, formatUpdated(t, ru, now), []ToolCall{call}, nil)
}

// reject renders a recoverable failure as a reply; store failures propagate.
func (p *Pipeline) reject(ctx context.Context, owner string, conversationID int, msg string, err error) (TurnResult, error) {
	var te *TurnError
	if errors.As(err, &te) && te.Recoverable() {
		return p.finish(ctx, owner, conversationID, msg, te.Message, nil, nil)
	}
	return TurnResult{}, err
}

// rejectWithList is reject plus the current task list, for "which task?"
// failures where seeing the list helps.
func (p *Pipeline) rejectWithList(ctx context.Context, owner string, conversationID int, msg string, err error, candidates []tasks.Task) (TurnResult, error) {
	var te *TurnError
	if errors.As(err, &te) && te.Recoverable() {
		reply := te.Message
		if len(candidates) > 0 && (te.Kind == NotFound || te.Kind == ParseFailure) {
			reply += "\n\n" + FormatTaskList(candidates, p.Now())
		}
		return p.finish(ctx, owner, conversationID, msg, reply, nil, nil)
	}
	return TurnResult{}, err
}

func listFilter(a ListArgs) (tasks.Filter, error) {
	var f tasks.Filter
	switch a.Status {
	case "", "all":
	case "pending":
		v := false
		f.Completed = &v
	case "completed":
		v := true
		f.Completed = &v
	default:
		return tasks.Filter{}, validationFailure("status", "I can filter by pending or completed, not %q.", a.Status)
	}
	if a.Priority != "" {
		if !tasks.ValidPriority(a.Priority) {
			return tasks.Filter{}, validationFailure("priority", "Priority must be high, medium or low, not %q.", a.Priority)
		}
		f.Priority = a.Priority
	}
	return f, nil
}
