package handler

import (
	"errors"
	"net/http"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Register creates a new account and returns a token.
// @Summary Register account
// @Description Creates a user account and returns a JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Credentials"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if len(req.Username) < 3 || len(req.Password) < 8 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CREDENTIALS",
			"username must be at least 3 characters, password at least 8")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if errors.Is(err, store.ErrDuplicate) {
		respond.WriteError(w, http.StatusConflict, "USERNAME_TAKEN", "username already registered")
		return
	}
	if err != nil {
		h.logger.Error("create user", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not create user")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, tokenResponse{Token: token, UserID: user.ID, Username: user.Username})
}

// Login verifies credentials and returns a token.
// @Summary Log in
// @Description Verifies credentials and returns a JWT.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	user, err := h.store.UserByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !h.auth.CheckPassword(user.PasswordHash, req.Password)) {
		respond.WriteError(w, http.StatusUnauthorized, "INVALID_LOGIN", "wrong username or password")
		return
	}
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, tokenResponse{Token: token, UserID: user.ID, Username: user.Username})
}

// Me returns the authenticated user.
// @Summary Current user
// @Description Returns the account behind the presented token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} speedway.User
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.UserByID(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, user.User)
}
