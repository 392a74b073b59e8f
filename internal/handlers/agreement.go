package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/services"
)

type AgreementHandler struct {
	DB      *gorm.DB
	Service *services.AgreementService
}

func NewAgreementHandler(db *gorm.DB, svc *services.AgreementService) *AgreementHandler {
	return &AgreementHandler{DB: db, Service: svc}
}

func (h *AgreementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/agreements", h.collection)
	mux.HandleFunc("/agreements/get", h.get)
	mux.HandleFunc("/agreements/generate", h.generate)
	mux.HandleFunc("/agreements/send", h.transition(models.AgreementStatusSent))
	mux.HandleFunc("/agreements/accept", h.transition(models.AgreementStatusAccepted))
	mux.HandleFunc("/agreements/reject", h.transition(models.AgreementStatusRejected))
	mux.HandleFunc("/agreements/expire", h.transition(models.AgreementStatusExpired))
	mux.HandleFunc("/agreements/sign", h.sign)
	mux.HandleFunc("/agreements/penalty", h.penalty)
}

func (h *AgreementHandler) collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	q := h.DB.Order("id desc")
	if quoteID := r.URL.Query().Get("quote_id"); quoteID != "" {
		q = q.Where("quote_id = ?", quoteID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var agreements []models.ServiceAgreement
	if err := q.Find(&agreements).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"agreements": agreements})
}

func (h *AgreementHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var ag models.ServiceAgreement
	if err := h.DB.First(&ag, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, ag)
}

func (h *AgreementHandler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		QuoteID    uint           `json:"quote_id"`
		TemplateID uint           `json:"template_id"`
		Overrides  map[string]any `json:"overrides"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ag, err := h.Service.Generate(services.GenerateInput{
		QuoteID:    req.QuoteID,
		TemplateID: req.TemplateID,
		Trigger:    services.TriggerAPI,
		Overrides:  req.Overrides,
		UserID:     currentUserID(r),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ag)
}

func (h *AgreementHandler) transition(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		var req struct {
			ID uint `json:"id"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ID == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
			return
		}
		ag, err := h.Service.Transition(req.ID, target, currentUserID(r))
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, ag)
	}
}

func (h *AgreementHandler) sign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		ID uint `json:"id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ag, err := h.Service.Sign(req.ID, currentUserID(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ag)
}

// penalty computes a breach credit for an agreement at a given severity.
func (h *AgreementHandler) penalty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		ID       uint    `json:"id"`
		Severity float64 `json:"severity"` // 1 = minor .. 5 = critical
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if req.Severity <= 0 {
		req.Severity = 1
	}
	var ag models.ServiceAgreement
	if err := h.DB.First(&ag, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	b := services.ComputeBreachPenalty(ag.MonthlyRevenue, ag.PenaltyRatePercent, req.Severity, ag.PenaltyCapPercent)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"agreement_id": ag.ID,
		"severity":     req.Severity,
		"calculated":   b.Calculated,
		"cap_amount":   b.CapAmount,
		"final":        b.Final,
	})
}
