package handlers

import (
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/services"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	Invoices *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Invoices: services.NewInvoiceService()}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/invoices", h.collection)
	mux.HandleFunc("/invoices/get", h.get)
	mux.HandleFunc("/invoices/finalize", h.finalize)
	mux.HandleFunc("/invoices/payments", h.payments)
}

// nextInvoiceNumber allocates a sequence like INV-2026-0007 inside the
// creation transaction.
func nextInvoiceNumber(tx *gorm.DB) string {
	year := time.Now().Year()
	var count int64
	tx.Model(&models.Invoice{}).Where("number LIKE ?", fmt.Sprintf("INV-%d-%%", year)).Count(&count)
	return fmt.Sprintf("INV-%d-%04d", year, count+1)
}

func (h *InvoiceHandler) collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	var invoices []models.Invoice
	if err := h.DB.Preload("Items").Order("id desc").Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").First(&inv, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	subtotal, vat, total := h.Invoices.ComputeTotals(&inv)
	var payments []models.Payment
	h.DB.Where("invoice_id = ?", inv.ID).Order("id").Find(&payments)
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice":  inv,
		"subtotal": subtotal,
		"vat":      vat,
		"total":    total,
		"paid":     paid,
		"balance":  total - paid,
		"payments": payments,
	})
}

func (h *InvoiceHandler) finalize(w http.ResponseWriter, r *http.Request) {
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
	var inv models.Invoice
	if err := h.DB.Preload("Items").First(&inv, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if inv.Status != models.InvoiceStatusDraft {
		httpx.JSONError(w, http.StatusConflict, "not_draft", nil)
		return
	}
	if len(inv.Items) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_items", nil)
		return
	}
	inv.Status = models.InvoiceStatusFinal
	if err := h.DB.Save(&inv).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) payments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		InvoiceID uint    `json:"invoice_id"`
		Amount    float64 `json:"amount"`
		Method    string  `json:"method"`
		Note      string  `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.InvoiceID == 0 || req.Amount <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount": "must_be_positive"})
		return
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").First(&inv, req.InvoiceID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if inv.Status == models.InvoiceStatusDraft {
		httpx.JSONError(w, http.StatusConflict, "invoice_not_final", nil)
		return
	}
	if req.Method == "" {
		req.Method = "eft"
	}
	payment := models.Payment{InvoiceID: inv.ID, Date: time.Now(), Amount: req.Amount, Method: req.Method, Status: "paid", Note: req.Note}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		_, _, total := h.Invoices.ComputeTotals(&inv)
		var paid float64
		rows := []models.Payment{}
		if err := tx.Where("invoice_id = ?", inv.ID).Find(&rows).Error; err != nil {
			return err
		}
		for _, p := range rows {
			paid += p.Amount
		}
		if paid >= total && inv.Status != models.InvoiceStatusPaid {
			inv.Status = models.InvoiceStatusPaid
			return tx.Save(&inv).Error
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": payment, "invoice_status": inv.Status})
}
