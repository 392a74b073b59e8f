package db

import (
	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

const baseSLABody = `SERVICE LEVEL AGREEMENT

Between {{company_name}} ("Provider") and {{client_name}} ("Client")
Reference quote: {{quote_number}}
Effective from: {{start_date}}

1. SERVICES
The Provider will deliver and support the works described in the
referenced quote for a total contract value of {{currency}} {{contract_value}}
({{currency}} {{monthly_value}} monthly equivalent over {{contract_months}} months).

2. SERVICE LEVELS
Uptime guarantee: {{uptime_guarantee}}%
Support hours: {{support_hours}}
Response time: {{response_time}} hours
Resolution time: {{resolution_time}} hours
Security level: {{security_level}}

3. PENALTIES
Breaches are credited at {{penalty_rate}}% of monthly revenue per severity
point, capped at {{penalty_cap}}% of monthly revenue per month.

4. PAYMENT
Deposit: {{currency}} {{deposit_amount}} ({{deposit_percent}}%)
Balance: {{currency}} {{balance_amount}}
`

func baseVariables() []models.TemplateVariable {
	req := func(name, typ string) models.TemplateVariable {
		return models.TemplateVariable{Name: name, Type: typ, Required: true}
	}
	opt := func(name, typ, def string) models.TemplateVariable {
		return models.TemplateVariable{Name: name, Type: typ, Default: def}
	}
	return []models.TemplateVariable{
		req("client_name", models.VarTypeText),
		req("company_name", models.VarTypeText),
		req("quote_number", models.VarTypeText),
		req("contract_value", models.VarTypeNumber),
		opt("monthly_value", models.VarTypeNumber, ""),
		opt("contract_months", models.VarTypeNumber, "12"),
		opt("currency", models.VarTypeText, "ZAR"),
		opt("start_date", models.VarTypeDate, ""),
		opt("uptime_guarantee", models.VarTypeNumber, "99.5"),
		opt("support_hours", models.VarTypeText, "Business hours (08:00-17:00 SAST, Mon-Fri)"),
		opt("response_time", models.VarTypeNumber, "8"),
		opt("resolution_time", models.VarTypeNumber, "72"),
		opt("security_level", models.VarTypeText, "Basic"),
		opt("penalty_rate", models.VarTypeNumber, "0.5"),
		opt("penalty_cap", models.VarTypeNumber, "10"),
		opt("deposit_amount", models.VarTypeNumber, "0"),
		opt("deposit_percent", models.VarTypeNumber, "0"),
		opt("balance_amount", models.VarTypeNumber, "0"),
	}
}

// SeedTemplates inserts one default SLA template per package category if
// that category has none yet. Idempotent.
func SeedTemplates(db *gorm.DB) {
	type seed struct {
		category string
		name     string
		extra    []models.TemplateVariable
		section  string
	}
	seeds := []seed{
		{
			category: detector.CategoryEcomSite,
			name:     "E-commerce SLA",
			extra: []models.TemplateVariable{
				{Name: "products_count", Type: models.VarTypeNumber, Default: "10"},
			},
			section: "\n5. STORE OPERATIONS\nCatalogue size supported: up to {{products_count}} products.\n",
		},
		{
			category: detector.CategoryGeneralWebsite,
			name:     "Website SLA",
			extra: []models.TemplateVariable{
				{Name: "pages_count", Type: models.VarTypeNumber, Default: "5"},
			},
			section: "\n5. SITE SCOPE\nMaintained pages: up to {{pages_count}}.\n",
		},
		{
			category: detector.CategoryBusinessProcess,
			name:     "Business Process SLA",
			extra: []models.TemplateVariable{
				{Name: "workflows_count", Type: models.VarTypeNumber, Default: "3"},
				{Name: "compliance_level", Type: models.VarTypeText, Default: "Standard"},
			},
			section: "\n5. PROCESS SCOPE\nAutomated workflows: {{workflows_count}}. Compliance level: {{compliance_level}}.\n",
		},
		{
			category: detector.CategoryMarketingPlatform,
			name:     "Marketing Platform SLA",
			extra: []models.TemplateVariable{
				{Name: "campaigns_count", Type: models.VarTypeNumber, Default: "2"},
			},
			section: "\n5. CAMPAIGN SCOPE\nConcurrent campaigns supported: {{campaigns_count}}.\n",
		},
	}

	for _, sd := range seeds {
		var existing int64
		db.Model(&models.SLATemplate{}).Where("category = ?", sd.category).Count(&existing)
		if existing > 0 {
			continue
		}
		tmpl := models.SLATemplate{
			Name:               sd.name,
			Category:           sd.category,
			Body:               baseSLABody + sd.section,
			Variables:          append(baseVariables(), sd.extra...),
			UptimeTarget:       99.5,
			ResponseHours:      8,
			ResolutionHours:    72,
			PenaltyRatePercent: 0.5,
			PenaltyCapPercent:  10,
			IsDefault:          true,
		}
		db.Create(&tmpl)
	}
}
