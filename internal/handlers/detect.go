package handlers

import (
	"net/http"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/httpx"
)

// DetectHandler classifies an arbitrary quote payload without persisting
// anything. Useful for previewing what category a quote would land in.
type DetectHandler struct{}

func NewDetectHandler() *DetectHandler { return &DetectHandler{} }

func (h *DetectHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/detect", h.detect)
}

type detectRequest struct {
	QuoteID       uint              `json:"quote_id"`
	ClientName    string            `json:"client_name"`
	ClientCompany string            `json:"client_company"`
	Notes         string            `json:"notes"`
	Terms         string            `json:"terms"`
	Total         float64           `json:"total"`
	Context       map[string]string `json:"context"`
	Items         []struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	} `json:"items"`
}

func (h *DetectHandler) detect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req detectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := detector.Input{
		QuoteID:       req.QuoteID,
		ClientName:    req.ClientName,
		ClientCompany: req.ClientCompany,
		Notes:         req.Notes,
		Terms:         req.Terms,
		Total:         req.Total,
		Context:       req.Context,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, detector.Item{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	result, err := detector.Detect(in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
