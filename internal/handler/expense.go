package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rms-backend/internal/domain"
	"rms-backend/internal/repository"
	"rms-backend/internal/server/authctx"
)

type ExpenseHandler struct {
	Repo repository.ExpenseRepository
}

func (h ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Post("/expenses", h.create)
	r.Delete("/expenses/{id}", h.delete)
}

func (h ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var items []domain.Expense
	if from != nil || to != nil {
		items, err = h.Repo.ListFiltered(r.Context(), user.BranchScope(), from, to)
	} else {
		items, err = h.Repo.List(r.Context(), user.BranchScope(), 200)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		BillName string          `json:"billName"`
		Amount   decimal.Decimal `json:"amount"`
		Date     string          `json:"date"`
		BranchID *int64          `json:"branchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.BillName == "" {
		writeError(w, http.StatusBadRequest, "billName is required")
		return
	}
	dt := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		dt = parsed
	}
	branchID := req.BranchID
	if scope := user.BranchScope(); scope != nil {
		branchID = scope
	}

	e, err := h.Repo.Create(r.Context(), repository.CreateExpenseInput{
		BillName: req.BillName,
		Amount:   req.Amount,
		Date:     dt,
		BranchID: branchID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(*e))
}

func (h ExpenseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toExpenseResponse(e domain.Expense) map[string]any {
	return map[string]any{
		"id":       e.ID,
		"branchId": e.BranchID,
		"billName": e.BillName,
		"amount":   e.Amount,
		"date":     e.Date.Format(dateLayout),
	}
}
