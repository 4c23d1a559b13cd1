package chat

import (
	"context"
	"errors"

	"taskmate-backend/internal/tasks"
)

// TaskStore is the slice of the task store the pipeline needs. Every method
// is owner-scoped; the executor never sees another user's tasks.
type TaskStore interface {
	Create(ctx context.Context, owner string, nt tasks.NewTask) (tasks.Task, error)
	Get(ctx context.Context, owner string, id int) (tasks.Task, error)
	List(ctx context.Context, owner string, f tasks.Filter) ([]tasks.Task, error)
	Update(ctx context.Context, owner string, id int, p tasks.Patch) (tasks.Task, error)
	Delete(ctx context.Context, owner string, id int) (tasks.Task, error)
}

// Executor runs resolved operations against the store, translating store
// errors into the turn error taxonomy.
type Executor struct {
	Store TaskStore
}

func (e *Executor) Add(ctx context.Context, owner string, a ResolvedAdd) (tasks.Task, error) {
	t, err := e.Store.Create(ctx, owner, tasks.NewTask{
		Title:       a.Title,
		Description: a.Description,
		Priority:    a.Priority,
		DueDate:     a.DueDate,
	})
	if err != nil {
		return tasks.Task{}, storeFailure(err)
	}
	return t, nil
}

func (e *Executor) List(ctx context.Context, owner string, f tasks.Filter) ([]tasks.Task, error) {
	ts, err := e.Store.List(ctx, owner, f)
	if err != nil {
		return nil, storeFailure(err)
	}
	return ts, nil
}

func (e *Executor) Complete(ctx context.Context, owner string, id int) (tasks.Task, error) {
	done := true
	return e.update(ctx, owner, id, tasks.Patch{Completed: &done})
}

func (e *Executor) Update(ctx context.Context, owner string, id int, u ResolvedUpdate) (tasks.Task, error) {
	return e.update(ctx, owner, id, u.patch())
}

func (e *Executor) update(ctx context.Context, owner string, id int, p tasks.Patch) (tasks.Task, error) {
	t, err := e.Store.Update(ctx, owner, id, p)
	if errors.Is(err, tasks.ErrNotFound) {
		return tasks.Task{}, notFound("I couldn't find task #%d on your list.", id)
	}
	if err != nil {
		return tasks.Task{}, storeFailure(err)
	}
	return t, nil
}

func (e *Executor) Delete(ctx context.Context, owner string, id int) (tasks.Task, error) {
	t, err := e.Store.Delete(ctx, owner, id)
	if errors.Is(err, tasks.ErrNotFound) {
		return tasks.Task{}, notFound("I couldn't find task #%d on your list.", id)
	}
	if err != nil {
		return tasks.Task{}, storeFailure(err)
	}
	return t, nil
}

// BatchItem is the outcome of one task within a batch.
type BatchItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Err   error  `json:"-"`
}

// BatchOutcome reports a batch's per-task results. Failures never stop the
// remaining items.
type BatchOutcome struct {
	Succeeded []BatchItem
	Failed    []BatchItem
}

// RunBatch applies a staged batch item by item.
func (e *Executor) RunBatch(ctx context.Context, owner string, kind PendingKind, ids []int) BatchOutcome {
	var out BatchOutcome
	for _, id := range ids {
		var t tasks.Task
		var err error
		if kind == PendingBatchDelete {
			t, err = e.Delete(ctx, owner, id)
		} else {
			t, err = e.Complete(ctx, owner, id)
		}
		if err != nil {
			out.Failed = append(out.Failed, BatchItem{ID: id, Err: err})
			continue
		}
		out.Succeeded = append(out.Succeeded, BatchItem{ID: t.ID, Title: t.Title})
	}
	return out
}
