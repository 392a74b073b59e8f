package mapper

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

// Resolution tiers, in the order they are attempted.
const (
	SourceDataSource = "data_source"
	SourceFieldMap   = "field_mapping"
	SourceFuzzy      = "fuzzy_match"
	SourceCategory   = "category_heuristic"
	SourceDefault    = "default"
	SourcePlaceholder = "placeholder"
)

// Per-tier confidence. Fuzzy matches are deliberately capped below every
// exact tier.
var tierConfidence = map[string]int{
	SourceDataSource:  100,
	SourceFieldMap:    90,
	SourceCategory:    80,
	SourceFuzzy:       70,
	SourceDefault:     60,
	SourcePlaceholder: 0,
}

// fieldMappings maps canonical variable names to candidate dotted paths,
// first non-empty wins. Derived paths come first so value-tier metrics
// override template defaults.
var fieldMappings = map[string][]string{
	"client_name":      {"client.name", "client.company"},
	"client_company":   {"client.company", "client.name"},
	"client_contact":   {"client.contact_name", "client.name"},
	"client_email":     {"client.email"},
	"client_phone":     {"client.phone"},
	"client_address":   {"client.address.line1"},
	"client_city":      {"client.address.city"},
	"client_vat":       {"client.vat_number"},
	"company_name":     {"company.trading_name", "company.legal_name"},
	"company_legal":    {"company.legal_name", "company.trading_name"},
	"company_email":    {"company.email"},
	"company_phone":    {"company.phone"},
	"company_vat":      {"company.vat_number"},
	"quote_number":     {"quote.number"},
	"quote_notes":      {"quote.notes"},
	"quote_terms":      {"quote.terms"},
	"contract_value":   {"derived.total_value", "quote.subtotal"},
	"total_value":      {"derived.total_value", "quote.subtotal"},
	"monthly_value":    {"derived.monthly_value"},
	"contract_months":  {"derived.contract_months"},
	"deposit_percent":  {"quote.deposit_percent", "derived.deposit_percent"},
	"deposit_amount":   {"derived.deposit_amount"},
	"balance_amount":   {"derived.balance_amount"},
	"currency":         {"company.currency", "derived.currency"},
	"start_date":       {"derived.start_date"},
	"valid_until":      {"quote.valid_until"},
	"uptime_guarantee": {"derived.uptime_guarantee", "template.uptime_target"},
	"response_time":    {"derived.response_time_hours", "template.response_hours"},
	"resolution_time":  {"derived.resolution_time_hours", "template.resolution_hours"},
	"support_hours":    {"derived.support_hours"},
	"penalty_rate":     {"template.penalty_rate_percent", "company.penalty_rate_percent", "derived.penalty_rate_percent"},
	"penalty_cap":      {"template.penalty_cap_percent", "company.penalty_cap_percent", "derived.penalty_cap_percent"},
	"security_level":   {"derived.security_level"},
	"compliance_level": {"derived.compliance_level"},
}

// categoryMappings offers extra candidate paths keyed by detected package
// category, tried after fuzzy matching.
var categoryMappings = map[string]map[string][]string{
	detector.CategoryEcomSite: {
		"products_count": {"derived.products_count"},
		"store_platform": {"overrides.store_platform"},
	},
	detector.CategoryGeneralWebsite: {
		"pages_count": {"derived.pages_count"},
	},
	detector.CategoryBusinessProcess: {
		"workflows_count": {"derived.workflows_count"},
		"users_count":     {"overrides.users_count"},
	},
	detector.CategoryMarketingPlatform: {
		"campaigns_count": {"derived.campaigns_count"},
	},
}

// Resolved is the outcome for one variable.
type Resolved struct {
	Name       string `json:"name"`
	Value      any    `json:"value"`
	Formatted  string `json:"formatted"`
	Source     string `json:"source"`
	Confidence int    `json:"confidence"`
}

// Output carries the full resolution result for a template.
type Output struct {
	Values          map[string]Resolved
	MissingRequired []string
	Warnings        []string
}

// Mapper resolves template variables against a merged data object.
type Mapper struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{log: log}
}

// Resolve runs every declared variable through the resolution tiers:
// data_source path, static field mapping, fuzzy match, category heuristic,
// declared default, placeholder. Missing optional variables degrade to a
// placeholder; missing required ones are additionally reported.
func (m *Mapper) Resolve(vars []models.TemplateVariable, data map[string]any, category string) Output {
	out := Output{Values: make(map[string]Resolved, len(vars))}
	warn := func(msg string) {
		out.Warnings = append(out.Warnings, msg)
		m.log.Warn("variable resolution warning", zap.String("detail", msg))
	}

	for _, v := range vars {
		raw, source, found := m.resolveRaw(v, data, category)
		if !found {
			if v.Default != "" {
				raw, source, found = v.Default, SourceDefault, true
			}
		}
		if !found {
			if v.Required {
				out.MissingRequired = append(out.MissingRequired, v.Name)
			}
			out.Values[v.Name] = Resolved{
				Name:       v.Name,
				Value:      nil,
				Formatted:  PlaceholderFor(v),
				Source:     SourcePlaceholder,
				Confidence: tierConfidence[SourcePlaceholder],
			}
			continue
		}
		coerced := coerce(v, raw, warn)
		out.Values[v.Name] = Resolved{
			Name:       v.Name,
			Value:      coerced,
			Formatted:  formatValue(v.Type, coerced),
			Source:     source,
			Confidence: tierConfidence[source],
		}
	}
	return out
}

func (m *Mapper) resolveRaw(v models.TemplateVariable, data map[string]any, category string) (any, string, bool) {
	// 1. explicit data_source path
	if v.DataSource != "" {
		if val, ok := LookupPath(data, v.DataSource); ok {
			return val, SourceDataSource, true
		}
	}
	// 2. static field mapping
	if paths, ok := fieldMappings[v.Name]; ok {
		for _, p := range paths {
			if val, ok := LookupPath(data, p); ok {
				return val, SourceFieldMap, true
			}
		}
	}
	// 3. fuzzy term-overlap walk
	if val, score := fuzzyResolve(v.Name, data); score > 0 && val != nil {
		return val, SourceFuzzy, true
	}
	// 4. category-specific heuristics
	if byVar, ok := categoryMappings[category]; ok {
		if paths, ok := byVar[v.Name]; ok {
			for _, p := range paths {
				if val, ok := LookupPath(data, p); ok {
					return val, SourceCategory, true
				}
			}
		}
	}
	return nil, "", false
}

// PlaceholderFor builds the bracketed stand-in for an unresolved variable.
func PlaceholderFor(v models.TemplateVariable) string {
	label := v.Label
	if label == "" {
		label = DisplayName(v.Name)
	}
	return "[" + label + "]"
}

// DisplayName title-cases a snake_case variable name.
func DisplayName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
