package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Store is the owner-scoped task store. Every query filters by user_id; a
// row that does not match the owner is reported as ErrNotFound, never as a
// permission error.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

const taskColumns = `id, user_id, title, COALESCE(description,''), completed, priority, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	var due sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description,
		&t.Completed, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, owner string, nt NewTask) (Task, error) {
	priority := nt.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	var desc any
	if nt.Description != "" {
		desc = nt.Description
	}
	var due any
	if nt.DueDate != nil {
		due = *nt.DueDate
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, title, description, priority, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		owner, nt.Title, desc, priority, due,
	)
	t, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) Get(ctx context.Context, owner string, id int) (Task, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND user_id=$2`,
		id, owner,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, owner string, f Filter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id=$1`
	args := []any{owner}

	if f.Completed != nil {
		args = append(args, *f.Completed)
		query += fmt.Sprintf(" AND completed=$%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(" AND priority=$%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

// Update applies the patch in a single UPDATE statement so multi-field
// updates commit atomically. An empty patch still refreshes updated_at.
func (s *Store) Update(ctx context.Context, owner string, id int, p Patch) (Task, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		if *p.Description == "" {
			sets = append(sets, "description = NULL")
		} else {
			add("description", *p.Description)
		}
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	if p.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if p.DueDate != nil {
		add("due_date", *p.DueDate)
	}

	args = append(args, id)
	args = append(args, owner)
	query := fmt.Sprintf(
		"UPDATE tasks SET %s WHERE id=$%d AND user_id=$%d RETURNING "+taskColumns,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	row := s.DB.QueryRowContext(ctx, query, args...)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// Delete removes the task and returns its last state so callers can name
// what was removed.
func (s *Store) Delete(ctx context.Context, owner string, id int) (Task, error) {
	row := s.DB.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id=$1 AND user_id=$2 RETURNING `+taskColumns,
		id, owner,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("delete task: %w", err)
	}
	return t, nil
}
