package services

import (
	"time"

	"github.com/mokoena/sla-app/internal/apperr"
	"github.com/mokoena/sla-app/internal/models"
)

// QuoteService encapsulates quote business math and lifecycle rules.
// DB access stays in handlers, matching the rest of the codebase.
type QuoteService struct{}

func NewQuoteService() *QuoteService { return &QuoteService{} }

// quoteTransitions lists the legal moves. Expiry is reachable from any
// non-terminal state.
var quoteTransitions = map[string][]string{
	models.QuoteStatusDraft: {models.QuoteStatusSent, models.QuoteStatusExpired},
	models.QuoteStatusSent:  {models.QuoteStatusAccepted, models.QuoteStatusDeclined, models.QuoteStatusExpired},
}

// ComputeTotals computes subtotal, VAT and grand total for a quote given
// the company VAT settings.
func (s *QuoteService) ComputeTotals(q *models.Quote, company *models.CompanySettings) (subtotal, vat, total float64) {
	if q == nil {
		return 0, 0, 0
	}
	subtotal = q.Subtotal()
	if company != nil && company.VATEnabled && company.VATRate > 0 {
		vat = subtotal * company.VATRate
	}
	total = subtotal + vat
	return subtotal, vat, total
}

// Transition validates and applies a status change, stamping the matching
// timestamp. The caller persists the quote.
func (s *QuoteService) Transition(q *models.Quote, target string) error {
	allowed, ok := quoteTransitions[q.Status]
	if !ok {
		return apperr.Validation("quote is in a terminal status: " + q.Status)
	}
	legal := false
	for _, t := range allowed {
		if t == target {
			legal = true
			break
		}
	}
	if !legal {
		return apperr.Validation("illegal quote transition " + q.Status + " -> " + target)
	}
	now := time.Now()
	q.Status = target
	switch target {
	case models.QuoteStatusSent:
		q.SentAt = &now
	case models.QuoteStatusAccepted:
		q.AcceptedAt = &now
	case models.QuoteStatusDeclined:
		q.DeclinedAt = &now
	case models.QuoteStatusExpired:
		q.ExpiredAt = &now
	}
	return nil
}

// EligibleForAgreement reports whether a quote in the given status may have
// an SLA generated for it. Sent and accepted quotes both qualify for
// explicit generation; auto-generation fires on accept only.
func EligibleForAgreement(status string) bool {
	return status == models.QuoteStatusSent || status == models.QuoteStatusAccepted
}
