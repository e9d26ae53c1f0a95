package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rms-backend/internal/domain"
	"rms-backend/internal/repository"
	"rms-backend/internal/server/authctx"
)

type BranchHandler struct {
	Repo repository.BranchRepository
}

func (h BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/branches", h.list)
	r.Post("/branches", h.create)
}

func (h BranchHandler) list(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(branches))
	for _, b := range branches {
		resp = append(resp, toBranchResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createBranchPayload struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

func (h BranchHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil || user.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "only admins can create branches")
		return
	}
	var payload createBranchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	branch, err := h.Repo.Create(r.Context(), payload.Name, payload.Location)
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "branch name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toBranchResponse(*branch))
}

func toBranchResponse(b domain.Branch) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"name":      b.Name,
		"location":  b.Location,
		"createdAt": b.CreatedAt.Format(time.RFC3339),
	}
}
