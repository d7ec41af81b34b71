package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitbook/backend/internal/service"
)

// CategoryHandler serves expense category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryViews(cats))
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon"`
	Type string `json:"type"`
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cat, err := h.categories.Create(r.Context(), req.Name, req.Icon, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryView{
		ID: cat.ID, Name: cat.Name, Icon: cat.Icon, Type: cat.Type, CreatedBy: cat.CreatedBy,
	})
}

type updateCategoryRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
	Type *string `json:"type"`
}

// Update handles PUT /api/categories/{categoryID}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cat, err := h.categories.Update(r.Context(), chi.URLParam(r, "categoryID"), service.UpdateCategoryInput{
		Name: req.Name,
		Icon: req.Icon,
		Type: req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryView{
		ID: cat.ID, Name: cat.Name, Icon: cat.Icon, Type: cat.Type, CreatedBy: cat.CreatedBy,
	})
}

// Delete handles DELETE /api/categories/{categoryID}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
