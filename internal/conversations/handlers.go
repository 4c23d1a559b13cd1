package conversations

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskmate-backend/internal/auth"
	"taskmate-backend/internal/chat"
)

// Handlers exposes the chatbot over HTTP: one endpoint to send a message and
// two to read transcripts back.
type Handlers struct {
	Store    *Store
	Pipeline *chat.Pipeline
}

func NewHandlers(store *Store, pipeline *chat.Pipeline) *Handlers {
	return &Handlers{Store: store, Pipeline: pipeline}
}

func (h *Handlers) Register(r chi.Router) {
	r.Post("/chat", h.chatTurn)
	r.Get("/conversations/latest", h.latest)
	r.Get("/conversations/{id}/messages", h.messages)
}

type chatRequest struct {
	ConversationID *int   `json:"conversation_id"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID int             `json:"conversation_id"`
	Response       string          `json:"response"`
	ToolCalls      []chat.ToolCall `json:"tool_calls,omitempty"`
}

// chatTurn: POST /chat. Runs one turn of the conversation and persists the
// resulting confirmation state.
func (h *Handlers) chatTurn(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}
	if len(req.Message) > chat.MaxMessageLen {
		http.Error(w, "message too long", http.StatusBadRequest)
		return
	}

	var conv Conversation
	var err error
	if req.ConversationID != nil {
		conv, err = h.Store.Get(r.Context(), uid, *req.ConversationID)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
	} else {
		conv, err = h.Store.Create(r.Context(), uid)
	}
	if err != nil {
		slog.Error("load conversation failed", "user_id", uid, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	state := chat.TurnState{Pending: conv.Pending}
	result, err := h.Pipeline.ProcessTurn(r.Context(), uid, conv.ID, state, req.Message)
	if err != nil {
		var te *chat.TurnError
		if errors.As(err, &te) && te.Kind == chat.ValidationFailure {
			http.Error(w, te.Message, http.StatusBadRequest)
			return
		}
		slog.Error("chat turn failed", "user_id", uid, "conversation_id", conv.ID, "error", err)
		http.Error(w, "something went wrong, please try again", http.StatusInternalServerError)
		return
	}

	if err := h.Store.SavePending(r.Context(), uid, conv.ID, result.State.Pending); err != nil {
		slog.Error("save confirmation state failed", "conversation_id", conv.ID, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chatResponse{
		ConversationID: conv.ID,
		Response:       result.Reply,
		ToolCalls:      result.ToolCalls,
	})
}

// latest: GET /conversations/latest. 204 when the user has no conversations.
func (h *Handlers) latest(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conv, err := h.Store.Latest(r.Context(), uid)
	if errors.Is(err, ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.Error("latest conversation failed", "user_id", uid, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(conv)
}

// messages: GET /conversations/{id}/messages
func (h *Handlers) messages(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.Get(r.Context(), uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	msgs, err := h.Store.Messages(r.Context(), uid, id, 100)
	if err != nil {
		slog.Error("list messages failed", "conversation_id", id, "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []StoredMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msgs)
}
