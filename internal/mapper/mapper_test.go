package mapper

import (
	"strings"
	"testing"
	"time"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func sampleData() map[string]any {
	return map[string]any{
		"client": map[string]any{
			"name":    "Thandi's Boutique",
			"company": "",
			"email":   "thandi@example.co.za",
			"website": "https://boutique.example",
		},
		"company": map[string]any{
			"trading_name": "Mokoena Digital",
			"currency":     "ZAR",
		},
		"quote": map[string]any{
			"number":   "QTE-2026-0001",
			"subtotal": 120000.0,
		},
		"derived": map[string]any{
			"total_value":      138000.0,
			"uptime_guarantee": 99.5,
		},
		"overrides": map[string]any{
			"custom_note": "expedited delivery",
		},
	}
}

func TestLookupPath(t *testing.T) {
	data := sampleData()
	if v, ok := LookupPath(data, "client.email"); !ok || v != "thandi@example.co.za" {
		t.Errorf("client.email = %v, %v", v, ok)
	}
	// Empty strings count as a miss so fall-through works.
	if _, ok := LookupPath(data, "client.company"); ok {
		t.Error("empty value should be a miss")
	}
	if _, ok := LookupPath(data, "client.missing"); ok {
		t.Error("unknown key should be a miss")
	}
	list := map[string]any{"items": []any{map[string]any{"description": "first"}}}
	if v, ok := LookupPath(list, "items.0.description"); !ok || v != "first" {
		t.Errorf("slice index lookup = %v, %v", v, ok)
	}
	if _, ok := LookupPath(list, "items.5.description"); ok {
		t.Error("out-of-range index should be a miss")
	}
}

func TestResolveDataSourceTierWins(t *testing.T) {
	m := New(nil)
	vars := []models.TemplateVariable{
		// client_name would resolve via field mapping; the explicit
		// data_source must take precedence.
		{Name: "client_name", Type: models.VarTypeText, DataSource: "overrides.custom_note"},
	}
	out := m.Resolve(vars, sampleData(), detector.CategoryGeneralWebsite)
	r := out.Values["client_name"]
	if r.Source != SourceDataSource {
		t.Fatalf("source = %s, want %s", r.Source, SourceDataSource)
	}
	if r.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", r.Confidence)
	}
	if r.Formatted != "expedited delivery" {
		t.Errorf("formatted = %q", r.Formatted)
	}
}

func TestResolveFieldMappingTier(t *testing.T) {
	m := New(nil)
	out := m.Resolve([]models.TemplateVariable{
		{Name: "client_name", Type: models.VarTypeText},
		{Name: "contract_value", Type: models.VarTypeNumber},
	}, sampleData(), detector.CategoryGeneralWebsite)

	if r := out.Values["client_name"]; r.Source != SourceFieldMap || r.Formatted != "Thandi's Boutique" {
		t.Errorf("client_name = %+v", r)
	}
	if r := out.Values["contract_value"]; r.Source != SourceFieldMap || r.Value != 138000.0 {
		t.Errorf("contract_value = %+v", r)
	}
}

func TestResolveFuzzyTier(t *testing.T) {
	m := New(nil)
	// client_website is not in the static field map; the term-overlap walk
	// should land on client.website.
	out := m.Resolve([]models.TemplateVariable{
		{Name: "client_website", Type: models.VarTypeText},
	}, sampleData(), detector.CategoryGeneralWebsite)
	r := out.Values["client_website"]
	if r.Source != SourceFuzzy {
		t.Fatalf("source = %s, want %s", r.Source, SourceFuzzy)
	}
	if r.Confidence != 70 {
		t.Errorf("confidence = %d, want 70", r.Confidence)
	}
	if r.Formatted != "https://boutique.example" {
		t.Errorf("formatted = %q", r.Formatted)
	}
}

func TestResolveDefaultTier(t *testing.T) {
	m := New(nil)
	out := m.Resolve([]models.TemplateVariable{
		{Name: "grace_period_days", Type: models.VarTypeNumber, Default: "14"},
	}, sampleData(), detector.CategoryGeneralWebsite)
	r := out.Values["grace_period_days"]
	if r.Source != SourceDefault {
		t.Fatalf("source = %s, want %s", r.Source, SourceDefault)
	}
	if r.Value != 14.0 {
		t.Errorf("value = %v, want 14", r.Value)
	}
	if r.Confidence != 60 {
		t.Errorf("confidence = %d, want 60", r.Confidence)
	}
}

func TestResolveMissingRequiredBecomesPlaceholder(t *testing.T) {
	m := New(nil)
	out := m.Resolve([]models.TemplateVariable{
		{Name: "witness_signature", Type: models.VarTypeText, Required: true},
		{Name: "optional_extra", Type: models.VarTypeText},
	}, sampleData(), detector.CategoryGeneralWebsite)

	if len(out.MissingRequired) != 1 || out.MissingRequired[0] != "witness_signature" {
		t.Fatalf("missing required = %v", out.MissingRequired)
	}
	r := out.Values["witness_signature"]
	if r.Source != SourcePlaceholder || r.Confidence != 0 {
		t.Errorf("placeholder resolution = %+v", r)
	}
	if r.Formatted != "[Witness Signature]" {
		t.Errorf("formatted = %q", r.Formatted)
	}
	// Optional unresolved variables are placeholders but not reported.
	if out.Values["optional_extra"].Source != SourcePlaceholder {
		t.Errorf("optional_extra = %+v", out.Values["optional_extra"])
	}
}

func TestResolveCategoryHeuristicTier(t *testing.T) {
	m := New(nil)
	data := sampleData()
	data["derived"].(map[string]any)["products_count"] = 25.0
	out := m.Resolve([]models.TemplateVariable{
		{Name: "products_count", Type: models.VarTypeNumber},
	}, data, detector.CategoryEcomSite)
	r := out.Values["products_count"]
	// "products_count" has no static mapping, and its terms overlap the
	// derived key itself, so fuzzy may claim it first; either exact tier or
	// fuzzy is acceptable as long as the value lands.
	if r.Value != 25.0 {
		t.Fatalf("products_count = %+v", r)
	}
	if r.Source != SourceCategory && r.Source != SourceFuzzy {
		t.Errorf("source = %s", r.Source)
	}
}

func TestCoerceClampsToDeclaredRange(t *testing.T) {
	m := New(nil)
	data := map[string]any{"overrides": map[string]any{"score": 150.0, "floor": -5.0}}
	out := m.Resolve([]models.TemplateVariable{
		{Name: "score", Type: models.VarTypeNumber, DataSource: "overrides.score", Min: floatPtr(0), Max: floatPtr(100)},
		{Name: "floor", Type: models.VarTypeNumber, DataSource: "overrides.floor", Min: floatPtr(0), Max: floatPtr(100)},
	}, data, "")
	if out.Values["score"].Value != 100.0 {
		t.Errorf("score = %v, want 100", out.Values["score"].Value)
	}
	if out.Values["floor"].Value != 0.0 {
		t.Errorf("floor = %v, want 0", out.Values["floor"].Value)
	}
}

func TestCoerceBadNumberWarnsAndZeroes(t *testing.T) {
	m := New(nil)
	data := map[string]any{"overrides": map[string]any{"budget": "not a number"}}
	out := m.Resolve([]models.TemplateVariable{
		{Name: "budget", Type: models.VarTypeNumber, DataSource: "overrides.budget"},
	}, data, "")
	if out.Values["budget"].Value != 0.0 {
		t.Errorf("budget = %v, want 0", out.Values["budget"].Value)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a coercion warning")
	}
}

func TestCoerceBoolean(t *testing.T) {
	m := New(nil)
	data := map[string]any{"overrides": map[string]any{
		"a": "true", "b": "0", "c": "anything", "d": 2.0,
	}}
	vars := []models.TemplateVariable{
		{Name: "a", Type: models.VarTypeBoolean, DataSource: "overrides.a"},
		{Name: "b", Type: models.VarTypeBoolean, DataSource: "overrides.b"},
		{Name: "c", Type: models.VarTypeBoolean, DataSource: "overrides.c"},
		{Name: "d", Type: models.VarTypeBoolean, DataSource: "overrides.d"},
	}
	out := m.Resolve(vars, data, "")
	want := map[string]string{"a": "Yes", "b": "No", "c": "Yes", "d": "Yes"}
	for name, formatted := range want {
		if got := out.Values[name].Formatted; got != formatted {
			t.Errorf("%s = %q, want %q", name, got, formatted)
		}
	}
}

func TestUptimeDerivedOverridesTemplateDefault(t *testing.T) {
	quote := &models.Quote{
		ID: 1, Status: models.QuoteStatusSent,
		Items: []models.QuoteItem{{Description: "ERP build", Quantity: 1, UnitPrice: 600000}},
	}
	client := &models.Client{ID: 1, Name: "BigCo"}
	tmpl := &models.SLATemplate{ID: 1, UptimeTarget: 99.5}
	data := BuildData(quote, client, nil, tmpl, detector.CategoryBusinessProcess, nil)

	m := New(nil)
	out := m.Resolve([]models.TemplateVariable{
		{Name: "uptime_guarantee", Type: models.VarTypeNumber},
	}, data, detector.CategoryBusinessProcess)
	if got := out.Values["uptime_guarantee"].Value; got != 99.9 {
		t.Fatalf("uptime_guarantee = %v, want 99.9 for a contract over 500000", got)
	}
}

func TestRenderReplacesAllTokens(t *testing.T) {
	values := map[string]Resolved{
		"client_name": {Name: "client_name", Formatted: "Thandi's Boutique"},
	}
	body := "Agreement for {{ client_name }} regarding {{unknown_var}}."
	rendered, warnings := Render(body, values)
	if strings.Contains(rendered, "{{") {
		t.Fatalf("raw token survived: %q", rendered)
	}
	if !strings.Contains(rendered, "Thandi's Boutique") {
		t.Errorf("known token not substituted: %q", rendered)
	}
	if !strings.Contains(rendered, "[Unknown Var]") {
		t.Errorf("unknown token not bracketed: %q", rendered)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one", warnings)
	}
}

func TestRenderIdempotentOnResolvedBody(t *testing.T) {
	values := map[string]Resolved{"x": {Name: "x", Formatted: "done"}}
	first, _ := Render("value: {{x}}", values)
	second, warnings := Render(first, values)
	if first != second {
		t.Errorf("render not idempotent: %q vs %q", first, second)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("penalty_cap_percent"); got != "Penalty Cap Percent" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := formatValue(models.VarTypeDate, d); got != "9 March 2026" {
		t.Errorf("formatValue(date) = %q", got)
	}
}
