package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rms-backend/internal/metrics"
	"rms-backend/internal/repository"
	"rms-backend/internal/server/authctx"
	"rms-backend/internal/service"
)

type DashboardHandler struct {
	Repo    repository.DashboardRepository
	Reports service.ReportService
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/status-counts", h.statusCounts)
	r.Get("/dashboard/technicians", h.technicians)
	r.Get("/dashboard/recent", h.recent)
	r.Get("/dashboard/metrics", h.metrics)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	data, err := h.Repo.Summary(r.Context(), user.BranchScope())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalOrders":      data.TotalOrders,
		"openOrders":       data.OpenOrders,
		"completedToday":   data.CompletedToday,
		"completedRevenue": data.CompletedRevenue,
	})
}

func (h DashboardHandler) statusCounts(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Repo.StatusCounts(r.Context(), user.BranchScope())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, sc := range items {
		resp = append(resp, map[string]any{
			"status": string(sc.Status),
			"count":  sc.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DashboardHandler) technicians(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.TechnicianLoads(r.Context(), user.BranchScope(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, tl := range items {
		resp = append(resp, map[string]any{
			"technician": tl.Technician,
			"open":       tl.Open,
			"completed":  tl.Completed,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DashboardHandler) recent(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.RecentOrders(r.Context(), user.BranchScope(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, ro := range items {
		resp = append(resp, map[string]any{
			"id":          ro.ID,
			"orderNo":     ro.OrderNo,
			"clientName":  ro.ClientName,
			"machineType": ro.MachineType,
			"status":      string(ro.Status),
			"grandTotal":  ro.GrandTotal,
			"createdAt":   ro.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// metrics runs the revenue aggregator over the caller's branch scope, with an
// optional from/to window.
func (h DashboardHandler) metrics(w http.ResponseWriter, r *http.Request) {
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
	snap, err := h.Reports.Snapshot(r.Context(), user.BranchScope(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func toSnapshotResponse(snap *metrics.Snapshot) map[string]any {
	monthly := make([]map[string]any, 0, len(snap.Monthly))
	for _, m := range snap.Monthly {
		monthly = append(monthly, map[string]any{
			"month":             m.Month.String(),
			"gross":             m.Gross,
			"net":               m.Net,
			"expenses":          m.Expenses,
			"profit":            m.Profit,
			"sales":             m.Sales,
			"clients":           m.Clients,
			"averageOrderValue": m.AverageOrderValue,
		})
	}
	weekly := make([]map[string]any, 0, len(snap.Weekly))
	for _, wk := range snap.Weekly {
		weekly = append(weekly, map[string]any{
			"week":     wk.Week,
			"start":    wk.Start.Format(time.RFC3339),
			"end":      wk.End.Format(time.RFC3339),
			"gross":    wk.Gross,
			"net":      wk.Net,
			"expenses": wk.Expenses,
			"profit":   wk.Profit,
			"sales":    wk.Sales,
		})
	}
	statusCounts := make(map[string]int, len(snap.StatusCounts))
	for status, count := range snap.StatusCounts {
		statusCounts[string(status)] = count
	}
	return map[string]any{
		"totals": map[string]any{
			"revenue":           snap.Totals.Revenue,
			"net":               snap.Totals.Net,
			"expenses":          snap.Totals.Expenses,
			"profit":            snap.Totals.Profit,
			"sales":             snap.Totals.Sales,
			"clients":           snap.Totals.Clients,
			"averageOrderValue": snap.Totals.AverageOrderValue,
		},
		"monthly": monthly,
		"weekly":  weekly,
		"change": map[string]any{
			"revenue":           snap.Change.Revenue,
			"net":               snap.Change.Net,
			"expenses":          snap.Change.Expenses,
			"profit":            snap.Change.Profit,
			"averageOrderValue": snap.Change.AverageOrderValue,
			"sales":             snap.Change.Sales,
			"clients":           snap.Change.Clients,
		},
		"statusCounts": statusCounts,
	}
}
