package auth

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB     *sql.DB
	Secret []byte
}

func NewHandler(db *sql.DB, secret []byte) *Handler {
	return &Handler{DB: db, Secret: secret}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register: POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	var exists int
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM users WHERE email=$1", email,
	).Scan(&exists)
	if err == nil && exists > 0 {
		http.Error(w, "email already exists", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	_, err = h.DB.ExecContext(r.Context(),
		"INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4)",
		id, email, strings.TrimSpace(req.Name), string(hash),
	)
	if err != nil {
		slog.Error("register failed", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	token, err := GenerateToken(h.Secret, id)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: token, UserID: id})
}

// Login: POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var id, hash string
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT id, COALESCE(password_hash,'') FROM users WHERE email=$1",
		strings.ToLower(strings.TrimSpace(req.Email)),
	).Scan(&id, &hash)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusForbidden)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusForbidden)
		return
	}

	token, err := GenerateToken(h.Secret, id)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: token, UserID: id})
}

// Me: GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var email, name string
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT email, COALESCE(name,'') FROM users WHERE id=$1", userID,
	).Scan(&email, &name)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":    userID,
		"email": email,
		"name":  name,
	})
}
