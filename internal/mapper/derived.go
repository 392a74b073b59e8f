package mapper

import (
	"strings"
	"time"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

// Contract value tiers driving default SLA metrics. Larger engagements buy
// tighter guarantees.
const (
	tierEnterpriseValue = 500000.0
	tierStandardValue   = 100000.0

	defaultContractMonths = 12
)

// Metric ceilings for the estimated counts so a pathological quote cannot
// inflate them without bound.
const (
	maxProductsCount  = 50
	maxPagesCount     = 30
	maxWorkflowsCount = 20
	maxCampaignsCount = 15
)

// MetricsForValue returns the uptime/response/resolution tier for a total
// contract value.
func MetricsForValue(total float64) (uptime, responseHours, resolutionHours float64) {
	switch {
	case total > tierEnterpriseValue:
		return 99.9, 1, 4
	case total > tierStandardValue:
		return 99.5, 4, 24
	default:
		return 99.0, 8, 72
	}
}

// Derived computes the synthesised fields exposed under "derived." in the
// merged data object. All of them are pure functions of the quote and
// company snapshot.
func Derived(quote *models.Quote, company *models.CompanySettings, category string) map[string]any {
	d := map[string]any{
		"contract_months": float64(defaultContractMonths),
		"start_date":      time.Now(),
	}
	if company != nil {
		d["penalty_rate_percent"] = company.PenaltyRatePercent
		d["penalty_cap_percent"] = company.PenaltyCapPercent
		d["currency"] = company.Currency
	}
	if quote == nil {
		return d
	}

	subtotal := quote.Subtotal()
	total := subtotal
	if company != nil && company.VATEnabled {
		total = subtotal * (1 + company.VATRate)
	}
	d["subtotal_value"] = subtotal
	d["total_value"] = total
	d["monthly_value"] = total / defaultContractMonths
	d["deposit_percent"] = quote.DepositPercent
	d["deposit_amount"] = total * quote.DepositPercent / 100
	d["balance_amount"] = total - total*quote.DepositPercent/100

	uptime, resp, resol := MetricsForValue(total)
	d["uptime_guarantee"] = uptime
	d["response_time_hours"] = resp
	d["resolution_time_hours"] = resol
	d["support_hours"] = supportHoursForValue(total)

	text := itemText(quote)
	d["security_level"] = securityLevel(text)
	d["compliance_level"] = complianceLevel(text)

	switch category {
	case detector.CategoryEcomSite:
		d["products_count"] = estimateCount(text, []string{"product", "sku", "item", "catalog"}, 5, 5, maxProductsCount)
	case detector.CategoryGeneralWebsite:
		d["pages_count"] = estimateCount(text, []string{"page", "section", "blog", "form"}, 5, 2, maxPagesCount)
	case detector.CategoryBusinessProcess:
		d["workflows_count"] = estimateCount(text, []string{"workflow", "process", "approval", "integration"}, 3, 1, maxWorkflowsCount)
	case detector.CategoryMarketingPlatform:
		d["campaigns_count"] = estimateCount(text, []string{"campaign", "newsletter", "mailer", "landing"}, 2, 1, maxCampaignsCount)
	}
	return d
}

func supportHoursForValue(total float64) string {
	switch {
	case total > tierEnterpriseValue:
		return "24/7"
	case total > tierStandardValue:
		return "Extended hours (07:00-19:00 SAST, Mon-Sat)"
	default:
		return "Business hours (08:00-17:00 SAST, Mon-Fri)"
	}
}

func securityLevel(text string) string {
	switch {
	case strings.Contains(text, "encryption"):
		return "Advanced"
	case strings.Contains(text, "ssl"):
		return "Standard"
	default:
		return "Basic"
	}
}

func complianceLevel(text string) string {
	for _, kw := range []string{"popi", "popia", "gdpr", "hipaa", "pci"} {
		if strings.Contains(text, kw) {
			return "Regulated"
		}
	}
	return "Standard"
}

// estimateCount turns keyword occurrences in item text into a rough count:
// base + perHit for every occurrence, capped.
func estimateCount(text string, keywords []string, base, perHit, ceiling int) float64 {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(text, kw)
	}
	n := base + perHit*hits
	if n > ceiling {
		n = ceiling
	}
	return float64(n)
}

func itemText(quote *models.Quote) string {
	parts := make([]string, 0, len(quote.Items)+2)
	for _, it := range quote.Items {
		parts = append(parts, it.Description)
	}
	parts = append(parts, quote.Notes, quote.Terms)
	return strings.ToLower(strings.Join(parts, " "))
}
