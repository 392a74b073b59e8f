package mapper

import (
	"testing"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

func TestMetricsForValue(t *testing.T) {
	cases := []struct {
		total  float64
		uptime float64
		resp   float64
		resol  float64
	}{
		{600000, 99.9, 1, 4},
		{500000, 99.5, 4, 24}, // boundary stays in the standard tier
		{150000, 99.5, 4, 24},
		{100000, 99.0, 8, 72},
		{5000, 99.0, 8, 72},
	}
	for _, c := range cases {
		u, r, rl := MetricsForValue(c.total)
		if u != c.uptime || r != c.resp || rl != c.resol {
			t.Errorf("MetricsForValue(%.0f) = %v/%v/%v, want %v/%v/%v",
				c.total, u, r, rl, c.uptime, c.resp, c.resol)
		}
	}
}

func TestDerivedAppliesVAT(t *testing.T) {
	quote := &models.Quote{
		Items:          []models.QuoteItem{{Description: "Build", Quantity: 1, UnitPrice: 100000}},
		DepositPercent: 50,
	}
	company := &models.CompanySettings{VATEnabled: true, VATRate: 0.15, Currency: "ZAR", PenaltyRatePercent: 0.5, PenaltyCapPercent: 10}
	d := Derived(quote, company, detector.CategoryGeneralWebsite)

	if d["subtotal_value"] != 100000.0 {
		t.Errorf("subtotal = %v", d["subtotal_value"])
	}
	total := d["total_value"].(float64)
	if total < 114999.99 || total > 115000.01 {
		t.Errorf("total = %v, want 115000", total)
	}
	deposit := d["deposit_amount"].(float64)
	balance := d["balance_amount"].(float64)
	if deposit+balance != total {
		t.Errorf("deposit %v + balance %v != total %v", deposit, balance, total)
	}
	// VAT pushes 100k over the standard tier boundary.
	if d["uptime_guarantee"] != 99.5 {
		t.Errorf("uptime = %v, want 99.5", d["uptime_guarantee"])
	}
}

func TestSecurityAndComplianceLevels(t *testing.T) {
	quote := &models.Quote{
		Items: []models.QuoteItem{{Description: "Data encryption at rest, POPIA compliance audit", Quantity: 1, UnitPrice: 50000}},
	}
	d := Derived(quote, nil, detector.CategoryBusinessProcess)
	if d["security_level"] != "Advanced" {
		t.Errorf("security_level = %v", d["security_level"])
	}
	if d["compliance_level"] != "Regulated" {
		t.Errorf("compliance_level = %v", d["compliance_level"])
	}

	plain := Derived(&models.Quote{Items: []models.QuoteItem{{Description: "Landing page", Quantity: 1, UnitPrice: 5000}}}, nil, detector.CategoryGeneralWebsite)
	if plain["security_level"] != "Basic" {
		t.Errorf("security_level = %v, want Basic", plain["security_level"])
	}
	if plain["compliance_level"] != "Standard" {
		t.Errorf("compliance_level = %v, want Standard", plain["compliance_level"])
	}
}

func TestEstimateCountsAreCapped(t *testing.T) {
	desc := ""
	for i := 0; i < 40; i++ {
		desc += "product "
	}
	quote := &models.Quote{Items: []models.QuoteItem{{Description: desc, Quantity: 1, UnitPrice: 1000}}}
	d := Derived(quote, nil, detector.CategoryEcomSite)
	if d["products_count"] != float64(maxProductsCount) {
		t.Errorf("products_count = %v, want capped at %d", d["products_count"], maxProductsCount)
	}
}

func TestSupportHoursTiers(t *testing.T) {
	if got := supportHoursForValue(600001); got != "24/7" {
		t.Errorf("enterprise support hours = %q", got)
	}
	if got := supportHoursForValue(150000); got == "24/7" {
		t.Errorf("standard tier got enterprise hours")
	}
}
