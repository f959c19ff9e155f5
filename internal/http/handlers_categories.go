package http

import (
	"net/http"
	"strings"

	"budget/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (req categoryRequest) toCategory(w http.ResponseWriter) (core.Category, bool) {
	c := core.Category{
		Name:  sanitizeInput(req.Name),
		Color: sanitizeInput(req.Color),
		Icon:  sanitizeInput(req.Icon),
	}
	if strings.TrimSpace(c.Name) == "" {
		writeValidationError(w, core.ErrEmptyName)
		return core.Category{}, false
	}
	return c, true
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := req.toCategory(w)
	if !ok {
		return
	}

	created, err := s.store.CreateCategory(r.Context(), c)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := req.toCategory(w)
	if !ok {
		return
	}
	c.ID = r.PathValue("id")

	updated, err := s.store.UpdateCategory(r.Context(), c)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Deleting a category leaves referencing records with a dangling weak id;
// readers render them as uncategorized.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
