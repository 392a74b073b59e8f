package services

import (
	"fmt"

	"github.com/mokoena/sla-app/internal/apperr"
	"github.com/mokoena/sla-app/internal/models"
)

// InvoiceService encapsulates invoice-related business logic.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

// ComputeTotals computes subtotal, VAT and grand total for an invoice
// using the VAT rate snapshot stored on the invoice itself.
func (s *InvoiceService) ComputeTotals(inv *models.Invoice) (subtotal, vat, total float64) {
	if inv == nil {
		return 0, 0, 0
	}
	for _, it := range inv.Items {
		subtotal += it.Quantity * it.UnitPrice
	}
	if inv.VATRate > 0 {
		vat = subtotal * inv.VATRate
	}
	total = subtotal + vat
	return subtotal, vat, total
}

// FromQuote builds an invoice (not yet persisted) from an accepted quote.
// A full invoice copies every line; a deposit invoice carries a single
// line for the deposit share of the subtotal (VAT applies on top).
func (s *InvoiceService) FromQuote(q *models.Quote, company *models.CompanySettings, kind string) (*models.Invoice, error) {
	if q == nil {
		return nil, apperr.Validation("quote is required")
	}
	if q.Status != models.QuoteStatusAccepted {
		return nil, apperr.Validation("only accepted quotes can be converted to invoices")
	}
	if len(q.Items) == 0 {
		return nil, apperr.Validation("quote has no line items")
	}
	if kind != models.InvoiceKindFull && kind != models.InvoiceKindDeposit {
		return nil, apperr.Validation("invoice kind must be full or deposit")
	}

	inv := &models.Invoice{
		Status:    models.InvoiceStatusDraft,
		Kind:      kind,
		CompanyID: q.CompanyID,
		ClientID:  q.ClientID,
		QuoteID:   q.ID,
	}
	if company != nil {
		inv.Currency = company.Currency
		if company.VATEnabled {
			inv.VATRate = company.VATRate
		}
	}

	if kind == models.InvoiceKindDeposit {
		if q.DepositPercent <= 0 || q.DepositPercent > 100 {
			return nil, apperr.Validation("quote has no deposit terms")
		}
		amount := q.Subtotal() * q.DepositPercent / 100
		inv.Items = []models.InvoiceItem{{
			Description: fmt.Sprintf("Deposit (%.0f%%) on quote %s", q.DepositPercent, q.Number),
			Quantity:    1,
			UnitPrice:   amount,
		}}
		return inv, nil
	}

	inv.Items = make([]models.InvoiceItem, 0, len(q.Items))
	for _, it := range q.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return inv, nil
}
