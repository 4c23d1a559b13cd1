package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"taskmate-backend/internal/auth"
)

// REST handlers over the task store. The chat pipeline goes through the
// store directly; these exist for the plain CRUD UI.

type Handlers struct {
	Store *Store
}

func NewHandlers(store *Store) *Handlers {
	return &Handlers{Store: store}
}

func (h *Handlers) Register(r chi.Router) {
	r.Get("/tasks", h.list)
	r.Post("/tasks", h.create)
	r.Get("/tasks/{id}", h.get)
	r.Patch("/tasks/{id}", h.update)
	r.Delete("/tasks/{id}", h.delete)
	r.Post("/tasks/{id}/complete", h.complete)
}

type taskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
	DueDate     *string `json:"due_date"`
	ClearDue    bool    `json:"clear_due_date,omitempty"`
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var f Filter
	switch r.URL.Query().Get("status") {
	case "pending":
		v := false
		f.Completed = &v
	case "completed":
		v := true
		f.Completed = &v
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		if !ValidPriority(p) {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		f.Priority = p
	}

	result, err := h.Store.List(r.Context(), uid, f)
	if err != nil {
		slog.Error("list tasks failed", "user_id", uid, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if result == nil {
		result = []Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	nt := NewTask{}
	if body.Title != nil {
		nt.Title = strings.TrimSpace(*body.Title)
	}
	if nt.Title == "" || utf8.RuneCountInString(nt.Title) > 200 {
		http.Error(w, "title must be 1-200 characters", http.StatusBadRequest)
		return
	}
	if body.Description != nil {
		if utf8.RuneCountInString(*body.Description) > 1000 {
			http.Error(w, "description too long (max 1000 characters)", http.StatusBadRequest)
			return
		}
		nt.Description = *body.Description
	}
	if body.Priority != nil {
		if !ValidPriority(*body.Priority) {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		nt.Priority = *body.Priority
	}
	if body.DueDate != nil && *body.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *body.DueDate)
		if err != nil {
			http.Error(w, "invalid due_date, want RFC3339", http.StatusBadRequest)
			return
		}
		nt.DueDate = &due
	}

	t, err := h.Store.Create(r.Context(), uid, nt)
	if err != nil {
		slog.Error("create task failed", "user_id", uid, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	t, err := h.Store.Get(r.Context(), uid, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p := Patch{
		Description: body.Description,
		Completed:   body.Completed,
	}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" || utf8.RuneCountInString(title) > 200 {
			http.Error(w, "title must be 1-200 characters", http.StatusBadRequest)
			return
		}
		p.Title = &title
	}
	if body.Description != nil && utf8.RuneCountInString(*body.Description) > 1000 {
		http.Error(w, "description too long (max 1000 characters)", http.StatusBadRequest)
		return
	}
	if body.Priority != nil {
		if !ValidPriority(*body.Priority) {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		p.Priority = body.Priority
	}
	if body.ClearDue {
		p.ClearDueDate = true
	} else if body.DueDate != nil && *body.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *body.DueDate)
		if err != nil {
			http.Error(w, "invalid due_date, want RFC3339", http.StatusBadRequest)
			return
		}
		p.DueDate = &due
	}

	t, err := h.Store.Update(r.Context(), uid, id, p)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("update task failed", "user_id", uid, "task_id", id, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	done := true
	t, err := h.Store.Update(r.Context(), uid, id, Patch{Completed: &done})
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)
}
