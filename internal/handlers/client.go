package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/validation"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

func (h *ClientHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/clients", h.collection)
	mux.HandleFunc("/clients/get", h.get)
	mux.HandleFunc("/clients/update", h.update)
	mux.HandleFunc("/clients/delete", h.delete)
}

type clientRequest struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	VATNumber   string `json:"vat_number"`
	Notes       string `json:"notes"`

	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

func (req *clientRequest) validate() validation.Violations {
	v := validation.Violations{}
	req.Name = strings.TrimSpace(req.Name)
	req.Company = strings.TrimSpace(req.Company)
	if req.Name == "" && req.Company == "" {
		v["name"] = "name_or_company_required"
	}
	return v
}

func (h *ClientHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var clients []models.Client
		if err := h.DB.Preload("Address").Order("name").Find(&clients).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
	case http.MethodPost:
		var req clientRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if violations := req.validate(); !violations.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
			return
		}
		client := models.Client{
			Name: req.Name, Company: req.Company, ContactName: req.ContactName,
			Email: req.Email, Phone: req.Phone, Website: req.Website,
			VATNumber: req.VATNumber, Notes: req.Notes,
		}
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if req.Address1 != "" || req.City != "" {
				addr := models.Address{Line1: req.Address1, Line2: req.Address2, PostalCode: req.PostalCode, City: req.City, Country: req.Country, Type: "main"}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
				client.AddressID = addr.ID
			}
			return tx.Create(&client).Error
		})
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, client)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Preload("Address").Preload("BillingAddress").First(&client, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if violations := req.validate(); !violations.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	client.Name = req.Name
	client.Company = req.Company
	client.ContactName = req.ContactName
	client.Email = req.Email
	client.Phone = req.Phone
	client.Website = req.Website
	client.VATNumber = req.VATNumber
	client.Notes = req.Notes
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Address1 != "" || req.City != "" {
			if client.AddressID != 0 {
				if err := tx.Model(&models.Address{}).Where("id = ?", client.AddressID).Updates(map[string]any{
					"line1": req.Address1, "line2": req.Address2,
					"postal_code": req.PostalCode, "city": req.City, "country": req.Country,
				}).Error; err != nil {
					return err
				}
			} else {
				addr := models.Address{Line1: req.Address1, Line2: req.Address2, PostalCode: req.PostalCode, City: req.City, Country: req.Country, Type: "main"}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
				client.AddressID = addr.ID
			}
		}
		return tx.Save(&client).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
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
	// Clients referenced by quotes must stay for numbering and history.
	var quoteCount int64
	h.DB.Model(&models.Quote{}).Where("client_id = ?", req.ID).Count(&quoteCount)
	if quoteCount > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_in_use", nil)
		return
	}
	if err := h.DB.Delete(&models.Client{}, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
