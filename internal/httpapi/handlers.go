package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mikanbox/relay/internal/auth"
	"github.com/mikanbox/relay/internal/logging"
	"github.com/mikanbox/relay/internal/store"
	"github.com/mikanbox/relay/pkg/relay"
)

// Handler serves the account and health endpoints. It is glue around the
// relay core: the core never calls back into it.
type Handler struct {
	users  store.Users
	tokens auth.Options
	hub    *relay.Hub
	logger *logging.Logger
}

// NewHandler creates an HTTP handler over the account store.
func NewHandler(users store.Users, tokens auth.Options, hub *relay.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		hub:    hub,
		logger: logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterUser handles POST /api/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username and password are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	err = h.users.Create(r.Context(), store.User{
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
			return
		}
		h.logger.Error("failed to create user", "username", req.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	h.logger.Info("user registered", "username", req.Username)
	w.WriteHeader(http.StatusCreated)
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		h.logger.Error("failed to look up user", "username", req.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	token, _, expireAt, err := auth.Generate(h.tokens, user.Username)
	if err != nil {
		h.logger.Error("failed to issue token", "username", req.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expireAt})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
