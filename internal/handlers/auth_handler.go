package handlers

import (
	"net/http"

	"github.com/splitbook/backend/internal/service"
)

// AuthHandler serves account endpoints.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User            userView `json:"user"`
	Token           string   `json:"token"`
	ConvertedGroups int      `json:"convertedGroups"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		User:            toUserView(session.User),
		Token:           session.Token,
		ConvertedGroups: session.ConvertedGroups,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		User:  toUserView(session.User),
		Token: session.Token,
	})
}

// Me handles GET /api/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UpdateProfile handles PUT /api/users/me.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), service.UpdateProfileInput{
		Name:     req.Name,
		Avatar:   req.Avatar,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

// SearchUsers handles GET /api/users/search?q=...
func (h *AuthHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserViews(users))
}
