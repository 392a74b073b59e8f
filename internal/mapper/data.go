package mapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/mokoena/sla-app/internal/models"
)

// BuildData assembles the merged object graph that variable resolution
// walks: quote, client, company, template, derived fields and caller
// overrides, each under its own top-level key.
func BuildData(quote *models.Quote, client *models.Client, company *models.CompanySettings, tmpl *models.SLATemplate, category string, overrides map[string]any) map[string]any {
	data := map[string]any{}

	if quote != nil {
		items := make([]any, 0, len(quote.Items))
		for _, it := range quote.Items {
			items = append(items, map[string]any{
				"description": it.Description,
				"quantity":    it.Quantity,
				"unit_price":  it.UnitPrice,
				"line_total":  it.Quantity * it.UnitPrice,
			})
		}
		data["quote"] = map[string]any{
			"id":              quote.ID,
			"number":          quote.Number,
			"status":          quote.Status,
			"notes":           quote.Notes,
			"terms":           quote.Terms,
			"deposit_percent": quote.DepositPercent,
			"valid_until":     derefTime(quote.ValidUntil),
			"items":           items,
			"subtotal":        quote.Subtotal(),
		}
	}

	if client != nil {
		data["client"] = map[string]any{
			"id":           client.ID,
			"name":         client.Name,
			"company":      client.Company,
			"contact_name": client.ContactName,
			"email":        client.Email,
			"phone":        client.Phone,
			"website":      client.Website,
			"vat_number":   client.VATNumber,
			"address": map[string]any{
				"line1":       client.Address.Line1,
				"line2":       client.Address.Line2,
				"postal_code": client.Address.PostalCode,
				"city":        client.Address.City,
				"country":     client.Address.Country,
			},
		}
	}

	if company != nil {
		data["company"] = map[string]any{
			"id":                   company.ID,
			"trading_name":         company.TradingName,
			"legal_name":           company.LegalName,
			"registration_no":      company.RegistrationNo,
			"vat_number":           company.VATNumber,
			"vat_rate":             company.VATRate,
			"currency":             company.Currency,
			"email":                company.Email,
			"phone":                company.Phone,
			"website":              company.Website,
			"penalty_rate_percent": company.PenaltyRatePercent,
			"penalty_cap_percent":  company.PenaltyCapPercent,
		}
	}

	if tmpl != nil {
		data["template"] = map[string]any{
			"id":                   tmpl.ID,
			"name":                 tmpl.Name,
			"category":             tmpl.Category,
			"uptime_target":        tmpl.UptimeTarget,
			"response_hours":       tmpl.ResponseHours,
			"resolution_hours":     tmpl.ResolutionHours,
			"penalty_rate_percent": tmpl.PenaltyRatePercent,
			"penalty_cap_percent":  tmpl.PenaltyCapPercent,
		}
	}

	data["derived"] = Derived(quote, company, category)

	if len(overrides) > 0 {
		ov := make(map[string]any, len(overrides))
		for k, v := range overrides {
			ov[k] = v
		}
		data["overrides"] = ov
	}
	return data
}

// LookupPath walks a dotted path through nested maps and slices. Numeric
// segments index into slices. Empty values (nil, "") count as a miss so
// fall-through to the next candidate path works.
func LookupPath(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = data
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	if isEmptyValue(cur) {
		return nil, false
	}
	return cur, true
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func derefTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
