package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/validation"
)

var varNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type TemplateHandler struct{ DB *gorm.DB }

func NewTemplateHandler(db *gorm.DB) *TemplateHandler { return &TemplateHandler{DB: db} }

func (h *TemplateHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/templates", h.collection)
	mux.HandleFunc("/templates/get", h.get)
	mux.HandleFunc("/templates/update", h.update)
	mux.HandleFunc("/templates/delete", h.delete)
}

type templateVarReq struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Required   bool     `json:"required"`
	Default    string   `json:"default"`
	DataSource string   `json:"data_source"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
}

type templateRequest struct {
	ID                 uint             `json:"id"`
	Name               string           `json:"name"`
	Category           string           `json:"category"`
	Body               string           `json:"body"`
	Variables          []templateVarReq `json:"variables"`
	UptimeTarget       float64          `json:"uptime_target"`
	ResponseHours      float64          `json:"response_hours"`
	ResolutionHours    float64          `json:"resolution_hours"`
	PenaltyRatePercent float64          `json:"penalty_rate_percent"`
	PenaltyCapPercent  float64          `json:"penalty_cap_percent"`
	IsDefault          bool             `json:"is_default"`
}

func (req *templateRequest) validate() validation.Violations {
	v := validation.Violations{}
	req.Name = strings.TrimSpace(req.Name)
	validation.Required("name", req.Name, v)
	validation.Required("body", req.Body, v)
	if req.Category != "" {
		validation.OneOf("category", req.Category, detector.Categories(), v)
	}
	validation.NonNegativeFloat("penalty_rate_percent", req.PenaltyRatePercent, v)
	validation.RangeFloat("penalty_cap_percent", req.PenaltyCapPercent, 0, 100, v)
	if req.UptimeTarget != 0 {
		validation.RangeFloat("uptime_target", req.UptimeTarget, 0, 100, v)
	}
	seen := map[string]bool{}
	varTypes := []string{models.VarTypeText, models.VarTypeNumber, models.VarTypeDate, models.VarTypeBoolean}
	for i, tv := range req.Variables {
		field := fmt.Sprintf("variables.%d.name", i)
		if !varNamePattern.MatchString(tv.Name) {
			v[field] = "must_be_snake_case"
		} else if seen[tv.Name] {
			v[field] = "duplicate"
		}
		seen[tv.Name] = true
		if tv.Type != "" {
			validation.OneOf(fmt.Sprintf("variables.%d.type", i), tv.Type, varTypes, v)
		}
	}
	return v
}

func (req *templateRequest) toModel() models.SLATemplate {
	tmpl := models.SLATemplate{
		Name:               req.Name,
		Category:           req.Category,
		Body:               req.Body,
		UptimeTarget:       req.UptimeTarget,
		ResponseHours:      req.ResponseHours,
		ResolutionHours:    req.ResolutionHours,
		PenaltyRatePercent: req.PenaltyRatePercent,
		PenaltyCapPercent:  req.PenaltyCapPercent,
		IsDefault:          req.IsDefault,
	}
	for _, tv := range req.Variables {
		typ := tv.Type
		if typ == "" {
			typ = models.VarTypeText
		}
		tmpl.Variables = append(tmpl.Variables, models.TemplateVariable{
			Name: tv.Name, Label: tv.Label, Type: typ, Required: tv.Required,
			Default: tv.Default, DataSource: tv.DataSource, Min: tv.Min, Max: tv.Max,
		})
	}
	return tmpl
}

func (h *TemplateHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var templates []models.SLATemplate
		if err := h.DB.Preload("Variables").Order("category, id").Find(&templates).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"templates": templates})
	case http.MethodPost:
		var req templateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if violations := req.validate(); !violations.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
			return
		}
		tmpl := req.toModel()
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if tmpl.IsDefault && tmpl.Category != "" {
				if err := tx.Model(&models.SLATemplate{}).
					Where("category = ?", tmpl.Category).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Create(&tmpl).Error
		})
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, tmpl)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var tmpl models.SLATemplate
	if err := h.DB.Preload("Variables").First(&tmpl, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req templateRequest
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
	var existing models.SLATemplate
	if err := h.DB.First(&existing, req.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	updated := req.toModel()
	updated.ID = existing.ID
	// Variable declarations are replaced wholesale; agreements already
	// generated keep their own resolved snapshots.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if updated.IsDefault && updated.Category != "" {
			if err := tx.Model(&models.SLATemplate{}).
				Where("category = ? AND id <> ?", updated.Category, updated.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("template_id = ?", updated.ID).Delete(&models.TemplateVariable{}).Error; err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request) {
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
	var agreementCount int64
	h.DB.Model(&models.ServiceAgreement{}).Where("template_id = ?", req.ID).Count(&agreementCount)
	if agreementCount > 0 {
		httpx.JSONError(w, http.StatusConflict, "template_in_use", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", req.ID).Delete(&models.TemplateVariable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SLATemplate{}, req.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
