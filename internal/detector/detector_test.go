package detector

import (
	"strings"
	"testing"
)

func TestDetectEcomQuote(t *testing.T) {
	res, err := Detect(Input{
		QuoteID:    1,
		ClientName: "Thandi's Boutique",
		Items: []Item{
			{Description: "Online store build with shopping cart and checkout", Quantity: 1, UnitPrice: 60000},
			{Description: "Payment gateway integration (PayFast)", Quantity: 1, UnitPrice: 40000},
			{Description: "Product catalogue setup and training", Quantity: 1, UnitPrice: 20000},
		},
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Category != CategoryEcomSite {
		t.Fatalf("category = %s, want %s", res.Category, CategoryEcomSite)
	}
	if res.Confidence < ConfidenceMedium {
		t.Errorf("confidence = %d, want >= %d", res.Confidence, ConfidenceMedium)
	}
	if res.Confidence > 100 {
		t.Errorf("confidence = %d, exceeds 100", res.Confidence)
	}
	if res.Band != "high" {
		t.Errorf("band = %s, want high", res.Band)
	}
	if len(res.Matched) == 0 {
		t.Error("expected matched keywords")
	}
}

func TestDetectNoSignalsDefaultsToGeneralWebsite(t *testing.T) {
	res, err := Detect(Input{
		QuoteID:    2,
		ClientName: "Acme",
		Notes:      "consulting retainer for Q3",
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Category != CategoryGeneralWebsite {
		t.Fatalf("category = %s, want %s", res.Category, CategoryGeneralWebsite)
	}
	if res.Confidence != 20 {
		t.Errorf("confidence = %d, want 20", res.Confidence)
	}
	if res.Band != "minimal" {
		t.Errorf("band = %s, want minimal", res.Band)
	}
}

func TestDetectSingleKeywordIsMedium(t *testing.T) {
	// One keyword, total and item count outside the typical ranges: no bonuses.
	res, err := Detect(Input{
		QuoteID:    3,
		ClientName: "Acme",
		Notes:      "blog",
		Total:      300000,
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Category != CategoryGeneralWebsite {
		t.Fatalf("category = %s, want %s", res.Category, CategoryGeneralWebsite)
	}
	if res.Confidence != 60 {
		t.Errorf("confidence = %d, want 60", res.Confidence)
	}
	if res.Band != "medium" {
		t.Errorf("band = %s, want medium", res.Band)
	}
}

func TestDetectTieBreakPrefersHigherPriority(t *testing.T) {
	// One ecom hit and one general-website hit: priority order decides.
	res, err := Detect(Input{
		QuoteID:    4,
		ClientName: "Acme",
		Notes:      "inventory website review",
		Total:      999, // outside both value ranges
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Category != CategoryEcomSite {
		t.Fatalf("category = %s, want %s on tie", res.Category, CategoryEcomSite)
	}
}

func TestDetectValidation(t *testing.T) {
	if _, err := Detect(Input{ClientName: "Acme"}); err == nil {
		t.Error("expected error for missing quote id")
	}
	if _, err := Detect(Input{QuoteID: 1}); err == nil {
		t.Error("expected error for missing client identity")
	}
	// Company name alone suffices.
	if _, err := Detect(Input{QuoteID: 1, ClientCompany: "Acme Pty Ltd"}); err != nil {
		t.Errorf("company-only identity rejected: %v", err)
	}
}

func TestDetectContextFeedsCorpus(t *testing.T) {
	res, err := Detect(Input{
		QuoteID:    5,
		ClientName: "Acme",
		Context:    map[string]string{"brief": "email marketing and seo campaign"},
	})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Category != CategoryMarketingPlatform {
		t.Fatalf("category = %s, want %s", res.Category, CategoryMarketingPlatform)
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		confidence int
		want       string
	}{
		{100, "high"}, {80, "high"}, {79, "medium"}, {60, "medium"},
		{59, "low"}, {40, "low"}, {39, "minimal"}, {0, "minimal"},
	}
	for _, c := range cases {
		if got := Band(c.confidence); got != c.want {
			t.Errorf("Band(%d) = %s, want %s", c.confidence, got, c.want)
		}
	}
}

func TestCatalogPriorityOrder(t *testing.T) {
	keys := Categories()
	want := []string{CategoryEcomSite, CategoryBusinessProcess, CategoryMarketingPlatform, CategoryGeneralWebsite}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("catalog order = %v, want %v", keys, want)
	}
}
