package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"rms-backend/internal/domain"
	"rms-backend/internal/repository"
	"rms-backend/internal/server/authctx"
)

var validate = validator.New()

type JobOrderHandler struct {
	Repo repository.JobOrderRepository
	Logs repository.ActivityLogRepository
}

func (h JobOrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/job-orders", h.create)
	r.Get("/job-orders", h.list)
	r.Get("/job-orders/{id}", h.get)
	r.Put("/job-orders/{id}", h.update)
	r.Patch("/job-orders/{id}/status", h.updateStatus)
	r.Delete("/job-orders/{id}", h.delete)
}

type materialPayload struct {
	Material  string          `json:"material" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Used      bool            `json:"used"`
}

type createJobOrderPayload struct {
	ClientID    *int64            `json:"clientId"`
	ClientName  string            `json:"clientName" validate:"required"`
	BranchID    *int64            `json:"branchId"`
	MachineType string            `json:"machineType" validate:"required"`
	SerialNo    string            `json:"serialNo"`
	Problem     string            `json:"problem"`
	Technician  string            `json:"technician"`
	Status      string            `json:"status"`
	GrandTotal  decimal.Decimal   `json:"grandTotal"`
	NetSales    decimal.Decimal   `json:"netSales"`
	Downpayment decimal.Decimal   `json:"downpayment"`
	Materials   []materialPayload `json:"materials" validate:"dive"`
}

func (h JobOrderHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createJobOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := domain.JobOrderStatus(req.Status)
	if req.Status == "" {
		status = domain.StatusPending
	}
	if !domain.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	branchID := req.BranchID
	if scope := user.BranchScope(); scope != nil {
		branchID = scope
	}

	order, err := h.Repo.Create(r.Context(), repository.CreateJobOrderInput{
		ClientID:    req.ClientID,
		ClientName:  req.ClientName,
		BranchID:    branchID,
		MachineType: req.MachineType,
		SerialNo:    req.SerialNo,
		Problem:     req.Problem,
		Technician:  req.Technician,
		Status:      status,
		GrandTotal:  req.GrandTotal,
		NetSales:    req.NetSales,
		Downpayment: req.Downpayment,
		Materials:   toMaterialInputs(req.Materials),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logActivity(r, "Job order created", order.OrderNo, user.Email)
	writeJSON(w, http.StatusCreated, toJobOrderResponse(*order))
}

func (h JobOrderHandler) list(w http.ResponseWriter, r *http.Request) {
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

	filter := repository.JobOrderFilter{From: from, To: to, BranchID: user.BranchScope()}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.JobOrderStatus(raw)
		if !domain.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		filter.Status = &status
	}
	if filter.BranchID == nil {
		if raw := r.URL.Query().Get("branchId"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				filter.BranchID = &id
			}
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	orders, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toJobOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h JobOrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	order, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toJobOrderResponse(*order))
}

type updateJobOrderPayload struct {
	MachineType *string            `json:"machineType"`
	SerialNo    *string            `json:"serialNo"`
	Problem     *string            `json:"problem"`
	Technician  *string            `json:"technician"`
	GrandTotal  *decimal.Decimal   `json:"grandTotal"`
	NetSales    *decimal.Decimal   `json:"netSales"`
	Downpayment *decimal.Decimal   `json:"downpayment"`
	Materials   *[]materialPayload `json:"materials" validate:"omitempty,dive"`
}

func (h JobOrderHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateJobOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := repository.UpdateJobOrderInput{
		MachineType: req.MachineType,
		SerialNo:    req.SerialNo,
		Problem:     req.Problem,
		Technician:  req.Technician,
		GrandTotal:  req.GrandTotal,
		NetSales:    req.NetSales,
		Downpayment: req.Downpayment,
	}
	if req.Materials != nil {
		in.Materials = toMaterialInputs(*req.Materials)
		if in.Materials == nil {
			in.Materials = []repository.MaterialInput{}
		}
	}

	order, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logActivity(r, "Job order updated", order.OrderNo, user.Email)
	writeJSON(w, http.StatusOK, toJobOrderResponse(*order))
}

func (h JobOrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	status := domain.JobOrderStatus(req.Status)
	if !domain.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	order, err := h.Repo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logActivity(r, "Status changed to "+req.Status, order.OrderNo, user.Email)
	writeJSON(w, http.StatusOK, toJobOrderResponse(*order))
}

func (h JobOrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.logActivity(r, "Job order deleted", strconv.FormatInt(id, 10), user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h JobOrderHandler) logActivity(r *http.Request, title, subject, actor string) {
	_, err := h.Logs.Create(r.Context(), repository.CreateActivityLogInput{
		Title:     title,
		Message:   subject,
		Actor:     actor,
		Type:      domain.LogInfo,
		Timestamp: time.Now(),
	})
	_ = err // audit trail is best effort
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toMaterialInputs(items []materialPayload) []repository.MaterialInput {
	var out []repository.MaterialInput
	for _, it := range items {
		out = append(out, repository.MaterialInput{
			Material:  it.Material,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Used:      it.Used,
		})
	}
	return out
}

func toJobOrderResponse(o domain.JobOrder) map[string]any {
	materials := make([]map[string]any, 0, len(o.Materials))
	for _, m := range o.Materials {
		materials = append(materials, map[string]any{
			"id":        m.ID,
			"material":  m.Material,
			"quantity":  m.Quantity,
			"unitPrice": m.UnitPrice,
			"used":      m.Used,
		})
	}
	resp := map[string]any{
		"id":          strconv.FormatInt(o.ID, 10),
		"orderNo":     o.OrderNo,
		"clientId":    o.ClientID,
		"clientName":  o.ClientName,
		"branchId":    o.BranchID,
		"machineType": o.MachineType,
		"serialNo":    o.SerialNo,
		"problem":     o.Problem,
		"technician":  o.Technician,
		"status":      string(o.Status),
		"grandTotal":  o.GrandTotal,
		"netSales":    o.NetSales,
		"downpayment": o.Downpayment,
		"materials":   materials,
		"createdAt":   o.CreatedAt.Format(time.RFC3339),
		"updatedAt":   o.UpdatedAt.Format(time.RFC3339),
	}
	if o.CompletedAt != nil {
		resp["completedAt"] = o.CompletedAt.Format(time.RFC3339)
	} else {
		resp["completedAt"] = nil
	}
	return resp
}
