package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rms-backend/internal/domain"
	"rms-backend/internal/repository"
)

type SettingsHandler struct {
	Repo repository.SettingsRepository
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.save)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(*settings))
}

type saveSettingsPayload struct {
	BusinessName    string `json:"businessName" validate:"required"`
	BusinessAddress string `json:"businessAddress"`
	BusinessPhone   string `json:"businessPhone"`
	ReceiptFooter   string `json:"receiptFooter"`
	CurrencyCode    string `json:"currencyCode" validate:"omitempty,len=3"`
	WarrantyNote    string `json:"warrantyNote"`
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	var payload saveSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.Repo.Save(r.Context(), domain.ShopSettings{
		BusinessName:    payload.BusinessName,
		BusinessAddress: payload.BusinessAddress,
		BusinessPhone:   payload.BusinessPhone,
		ReceiptFooter:   payload.ReceiptFooter,
		CurrencyCode:    payload.CurrencyCode,
		WarrantyNote:    payload.WarrantyNote,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(*saved))
}

func toSettingsResponse(s domain.ShopSettings) map[string]any {
	return map[string]any{
		"businessName":    s.BusinessName,
		"businessAddress": s.BusinessAddress,
		"businessPhone":   s.BusinessPhone,
		"receiptFooter":   s.ReceiptFooter,
		"currencyCode":    s.CurrencyCode,
		"warrantyNote":    s.WarrantyNote,
		"updatedAt":       s.UpdatedAt.Format(time.RFC3339),
	}
}
