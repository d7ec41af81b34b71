package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitbook/backend/internal/service"
)

// GroupHandler serves group and membership endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a group handler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name      string   `json:"name" validate:"required"`
	Currency  string   `json:"currency"`
	Icon      string   `json:"icon"`
	Image     string   `json:"image"`
	MemberIDs []string `json:"memberIds"`
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Create(r.Context(), service.CreateGroupInput{
		Name:      req.Name,
		Currency:  req.Currency,
		Icon:      req.Icon,
		Image:     req.Image,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupView(group))
}

// List handles GET /api/groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]groupView, len(groups))
	for i, g := range groups {
		views[i] = toGroupView(g)
	}
	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /api/groups/{groupID}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.Get(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupView(group))
}

type updateGroupRequest struct {
	Name     *string `json:"name"`
	Currency *string `json:"currency"`
	Icon     *string `json:"icon"`
	Image    *string `json:"image"`
}

// Update handles PUT /api/groups/{groupID}.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Update(r.Context(), chi.URLParam(r, "groupID"), service.UpdateGroupInput{
		Name:     req.Name,
		Currency: req.Currency,
		Icon:     req.Icon,
		Image:    req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupView(group))
}

// Delete handles DELETE /api/groups/{groupID}.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type addMemberResponse struct {
	Group            groupView `json:"group"`
	Pending          bool      `json:"pending"`
	ConvertedRecords int       `json:"convertedRecords"`
}

// AddMember handles POST /api/groups/{groupID}/members.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), service.AddMemberInput{
		UserID: req.UserID,
		Email:  req.Email,
		Name:   req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addMemberResponse{
		Group:            toGroupView(result.Group),
		Pending:          result.Pending,
		ConvertedRecords: result.ConvertedRecords,
	})
}

// RemoveMember handles DELETE /api/groups/{groupID}/members/{userID}.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.groups.RemoveMember(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Balances handles GET /api/groups/{groupID}/balances.
func (h *GroupHandler) Balances(w http.ResponseWriter, r *http.Request) {
	entries, err := h.groups.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceViews(entries))
}
