package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mokoena/sla-app/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error onto the right status using its apperr code.
// Extraction/mapping causes stay server-side: callers only see the code.
func Error(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		JSONError(w, http.StatusInternalServerError, apperr.CodeInternal, nil)
		return
	}
	switch ae.Code {
	case apperr.CodeValidation:
		JSONError(w, http.StatusBadRequest, ae.Code, ae.Message)
	case apperr.CodeNotFound:
		JSONError(w, http.StatusNotFound, ae.Code, ae.Message)
	case apperr.CodeConflict:
		JSONError(w, http.StatusConflict, ae.Code, ae.Message)
	default:
		JSONError(w, http.StatusInternalServerError, apperr.CodeInternal, nil)
	}
}
