package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/services"
	"github.com/mokoena/sla-app/internal/validation"
)

type QuoteHandler struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Quotes     *services.QuoteService
	Agreements *services.AgreementService
}

func NewQuoteHandler(db *gorm.DB, log *zap.Logger, agreements *services.AgreementService) *QuoteHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteHandler{DB: db, Log: log, Quotes: services.NewQuoteService(), Agreements: agreements}
}

func (h *QuoteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/quotes", h.collection)
	mux.HandleFunc("/quotes/get", h.get)
	mux.HandleFunc("/quotes/send", h.transition(models.QuoteStatusSent))
	mux.HandleFunc("/quotes/accept", h.transition(models.QuoteStatusAccepted))
	mux.HandleFunc("/quotes/decline", h.transition(models.QuoteStatusDeclined))
	mux.HandleFunc("/quotes/expire", h.transition(models.QuoteStatusExpired))
	mux.HandleFunc("/quotes/convert", h.convert)
}

type quoteItemReq struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type quoteRequest struct {
	ClientID       uint           `json:"client_id"`
	Items          []quoteItemReq `json:"items"`
	Notes          string         `json:"notes"`
	Terms          string         `json:"terms"`
	DepositPercent float64        `json:"deposit_percent"`
	ValidUntil     string         `json:"valid_until"` // YYYY-MM-DD
}

func (req *quoteRequest) validate() validation.Violations {
	v := validation.Violations{}
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if len(req.Items) == 0 {
		v["items"] = "at_least_one_item_required"
	}
	for i, it := range req.Items {
		if it.Description == "" {
			v[fmt.Sprintf("items.%d.description", i)] = "required"
		}
		if it.Quantity <= 0 {
			v[fmt.Sprintf("items.%d.quantity", i)] = "must_be_positive"
		}
		if it.UnitPrice < 0 {
			v[fmt.Sprintf("items.%d.unit_price", i)] = "must_not_be_negative"
		}
	}
	validation.RangeFloat("deposit_percent", req.DepositPercent, 0, 100, v)
	return v
}

// nextQuoteNumber allocates a human-readable sequence like QTE-2026-0007.
// Runs inside the creation transaction.
func nextQuoteNumber(tx *gorm.DB) string {
	year := time.Now().Year()
	var count int64
	tx.Model(&models.Quote{}).Where("number LIKE ?", fmt.Sprintf("QTE-%d-%%", year)).Count(&count)
	return fmt.Sprintf("QTE-%d-%04d", year, count+1)
}

func (h *QuoteHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var quotes []models.Quote
		if err := h.DB.Preload("Items").Preload("Client").Order("id desc").Find(&quotes).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"quotes": quotes})
	case http.MethodPost:
		var req quoteRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if violations := req.validate(); !violations.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
			return
		}
		var client models.Client
		if err := h.DB.First(&client, req.ClientID).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		quote := models.Quote{
			Status:         models.QuoteStatusDraft,
			CompanyID:      1,
			ClientID:       client.ID,
			Notes:          req.Notes,
			Terms:          req.Terms,
			DepositPercent: req.DepositPercent,
		}
		if req.ValidUntil != "" {
			if t, err := time.Parse("2006-01-02", req.ValidUntil); err == nil {
				quote.ValidUntil = &t
			} else {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"valid_until": "expected YYYY-MM-DD"})
				return
			}
		}
		for _, it := range req.Items {
			quote.Items = append(quote.Items, models.QuoteItem{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
		}
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			quote.Number = nextQuoteNumber(tx)
			return tx.Create(&quote).Error
		})
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, quote)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *QuoteHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var quote models.Quote
	if err := h.DB.Preload("Items").Preload("Client").First(&quote, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var company models.CompanySettings
	var companyPtr *models.CompanySettings
	if err := h.DB.First(&company).Error; err == nil {
		companyPtr = &company
	}
	subtotal, vat, total := h.Quotes.ComputeTotals(&quote, companyPtr)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quote":    quote,
		"subtotal": subtotal,
		"vat":      vat,
		"total":    total,
	})
}

// transition returns a POST handler that moves a quote to the target
// status. Accepting a quote additionally kicks off SLA auto-generation.
func (h *QuoteHandler) transition(target string) http.HandlerFunc {
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
		var quote models.Quote
		if err := h.DB.First(&quote, req.ID).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		if err := h.Quotes.Transition(&quote, target); err != nil {
			httpx.Error(w, err)
			return
		}
		if err := h.DB.Save(&quote).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}

		resp := map[string]any{"quote": quote}
		if target == models.QuoteStatusAccepted && h.Agreements != nil {
			ag, err := h.Agreements.AutoGenerateOnAccept(quote.ID, currentUserID(r))
			if err != nil {
				// Acceptance stands even when generation fails; surface it
				// in the response and the log rather than rolling back.
				h.Log.Warn("auto agreement generation failed",
					zap.Uint("quote_id", quote.ID), zap.Error(err))
				resp["agreement_error"] = err.Error()
			} else if ag != nil {
				resp["agreement"] = ag
			}
		}
		httpx.JSON(w, http.StatusOK, resp)
	}
}

func (h *QuoteHandler) convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req struct {
		ID   uint   `json:"id"`
		Kind string `json:"kind"` // full (default) or deposit
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if req.Kind == "" {
		req.Kind = models.InvoiceKindFull
	}
	var quote models.Quote
	if err := h.DB.Preload("Items").First(&quote, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if req.Kind == models.InvoiceKindFull && quote.ConvertedToInvoiceID != 0 {
		httpx.JSONError(w, http.StatusConflict, "already_converted", nil)
		return
	}
	var company models.CompanySettings
	var companyPtr *models.CompanySettings
	if err := h.DB.First(&company).Error; err == nil {
		companyPtr = &company
	}
	inv, err := services.NewInvoiceService().FromQuote(&quote, companyPtr, req.Kind)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		inv.Number = nextInvoiceNumber(tx)
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		if req.Kind == models.InvoiceKindFull {
			quote.ConvertedToInvoiceID = inv.ID
			return tx.Save(&quote).Error
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}
