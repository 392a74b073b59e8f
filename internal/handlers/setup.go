package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mokoena/sla-app/internal/auth"
	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/services"
	"github.com/mokoena/sla-app/internal/validation"
)

type SetupHandler struct {
	Service *services.SetupService
}

func NewSetupHandler(s *services.SetupService) *SetupHandler { return &SetupHandler{Service: s} }

// Handle exported wrapper for integration when composing custom middleware chains.
func (h *SetupHandler) Handle(w http.ResponseWriter, r *http.Request) { h.handle(w, r) }

type setupRequest struct {
	TradingName       string  `json:"trading_name"`
	LegalName         string  `json:"legal_name"`
	RegistrationNo    string  `json:"registration_no"`
	VATNumber         string  `json:"vat_number"`
	VATEnabled        bool    `json:"vat_enabled"`
	VATRate           float64 `json:"vat_rate"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Address1          string  `json:"address1"`
	Address2          string  `json:"address2"`
	PostalCode        string  `json:"postal_code"`
	City              string  `json:"city"`
	Country           string  `json:"country"`
	BillingAddress1   string  `json:"billing_address1"`
	BillingAddress2   string  `json:"billing_address2"`
	BillingPostalCode string  `json:"billing_postal_code"`
	BillingCity       string  `json:"billing_city"`
	BillingCountry    string  `json:"billing_country"`
}

func validateSetup(req *setupRequest) validation.Violations {
	v := validation.Violations{}
	req.TradingName = strings.TrimSpace(req.TradingName)
	req.Address1 = strings.TrimSpace(req.Address1)
	req.PostalCode = strings.TrimSpace(req.PostalCode)
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	validation.Required("trading_name", req.TradingName, v)
	validation.Required("address1", req.Address1, v)
	validation.Required("postal_code", req.PostalCode, v)
	validation.Required("city", req.City, v)
	validation.Required("country", req.Country, v)
	if req.VATEnabled {
		validation.RangeFloat("vat_rate", req.VATRate, 0.0001, 1, v)
	} else {
		req.VATRate = 0
	}
	return v
}

func (h *SetupHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		configured, err := h.Service.IsConfigured()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if !configured {
			httpx.JSON(w, http.StatusOK, map[string]any{"configured": false})
			return
		}
		cs, err := h.Service.Get()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"configured": true, "company": cs})
	case http.MethodPost:
		var req setupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if violations := validateSetup(&req); !violations.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
			return
		}
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		input := services.SetupInput{
			TradingName: req.TradingName, LegalName: req.LegalName,
			RegistrationNo: req.RegistrationNo, VATNumber: req.VATNumber,
			VATEnabled: req.VATEnabled, VATRate: req.VATRate,
			Email: req.Email, Phone: req.Phone,
			Address1: req.Address1, Address2: req.Address2,
			PostalCode: req.PostalCode, City: req.City, Country: req.Country,
			BillingAddress1: req.BillingAddress1, BillingAddress2: req.BillingAddress2,
			BillingPostalCode: req.BillingPostalCode, BillingCity: req.BillingCity, BillingCountry: req.BillingCountry,
			UserID: uid,
		}
		configured, _ := h.Service.IsConfigured()
		var err error
		var id uint
		if configured {
			updated, uerr := h.Service.Update(input)
			err = uerr
			if updated != nil {
				id = updated.ID
			}
		} else {
			created, cerr := h.Service.Run(input)
			err = cerr
			if created != nil {
				id = created.ID
			}
		}
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "configured": true, "id": id})
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
