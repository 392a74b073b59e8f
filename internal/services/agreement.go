package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/apperr"
	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/mapper"
	"github.com/mokoena/sla-app/internal/models"
)

// Generation trigger sources recorded for provenance.
const (
	TriggerAPI           = "api"
	TriggerQuoteAccepted = "quote_accepted"
)

// AgreementService orchestrates detection, variable mapping and agreement
// persistence.
type AgreementService struct {
	DB  *gorm.DB
	Log *zap.Logger
	m   *mapper.Mapper
}

func NewAgreementService(db *gorm.DB, log *zap.Logger) *AgreementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AgreementService{DB: db, Log: log, m: mapper.New(log)}
}

type GenerateInput struct {
	QuoteID    uint
	TemplateID uint // 0 selects the default template for the detected category
	Trigger    string
	Overrides  map[string]any
	UserID     uint
}

var agreementTransitions = map[string][]string{
	models.AgreementStatusDraft:     {models.AgreementStatusGenerated, models.AgreementStatusExpired},
	models.AgreementStatusGenerated: {models.AgreementStatusSent, models.AgreementStatusExpired},
	models.AgreementStatusSent:      {models.AgreementStatusAccepted, models.AgreementStatusRejected, models.AgreementStatusExpired},
}

// Generate creates a rendered service agreement for a quote. It enforces
// at-most-one active agreement per quote with a conditional insert inside
// a transaction; the SQL migrations add a matching partial unique index
// for multi-instance deployments.
func (s *AgreementService) Generate(in GenerateInput) (*models.ServiceAgreement, error) {
	if in.QuoteID == 0 {
		return nil, apperr.Validation("quote id is required")
	}

	var quote models.Quote
	if err := s.DB.Preload("Items").Preload("Client").First(&quote, in.QuoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quote not found")
		}
		return nil, apperr.Internal(err)
	}
	if !EligibleForAgreement(quote.Status) {
		return nil, apperr.Validation("quote must be sent or accepted before an agreement can be generated")
	}

	var company *models.CompanySettings
	var cs models.CompanySettings
	if err := s.DB.First(&cs).Error; err == nil {
		company = &cs
	}

	det, err := detector.Detect(detector.Input{
		QuoteID:       quote.ID,
		ClientName:    quote.Client.Name,
		ClientCompany: quote.Client.Company,
		Notes:         quote.Notes,
		Terms:         quote.Terms,
		Items:         detectorItems(quote.Items),
		Context:       stringContext(in.Overrides),
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templateFor(in.TemplateID, det.Category)
	if err != nil {
		return nil, err
	}

	data := mapper.BuildData(&quote, &quote.Client, company, tmpl, det.Category, in.Overrides)
	resolved := s.m.Resolve(tmpl.Variables, data, det.Category)
	body, renderWarnings := mapper.Render(tmpl.Body, resolved.Values)
	for _, w := range append(resolved.Warnings, renderWarnings...) {
		s.Log.Warn("agreement generation warning",
			zap.Uint("quote_id", quote.ID),
			zap.Uint("template_id", tmpl.ID),
			zap.String("detail", w))
	}

	varsJSON, err := json.Marshal(resolved.Values)
	if err != nil {
		merr := apperr.Mapping("marshal resolved variables", err)
		s.Log.Error("agreement mapping failed",
			zap.Uint("quote_id", quote.ID),
			zap.Uint("template_id", tmpl.ID),
			zap.Error(merr))
		return nil, merr
	}
	missingJSON, _ := json.Marshal(resolved.MissingRequired)

	derived := mapper.Derived(&quote, company, det.Category)
	total, _ := derived["total_value"].(float64)
	monthly, _ := derived["monthly_value"].(float64)
	uptime, respHours, resolHours := mapper.MetricsForValue(total)

	penaltyRate, penaltyCap := tmpl.PenaltyRatePercent, tmpl.PenaltyCapPercent
	if penaltyRate == 0 && company != nil {
		penaltyRate = company.PenaltyRatePercent
	}
	if penaltyCap == 0 && company != nil {
		penaltyCap = company.PenaltyCapPercent
	}

	now := time.Now()
	agreement := &models.ServiceAgreement{
		Reference:          "AGR-" + strings.ToUpper(uuid.NewString()[:8]),
		QuoteID:            quote.ID,
		TemplateID:         tmpl.ID,
		ClientID:           quote.ClientID,
		CompanyID:          quote.CompanyID,
		Status:             models.AgreementStatusGenerated,
		Category:           det.Category,
		Confidence:         det.Confidence,
		Body:               body,
		Variables:          string(varsJSON),
		MissingVars:        string(missingJSON),
		UptimeTarget:       uptime,
		ResponseHours:      respHours,
		ResolutionHours:    resolHours,
		MonthlyRevenue:     monthly,
		PenaltyRatePercent: penaltyRate,
		PenaltyCapPercent:  penaltyCap,
		SignatureStatus:    models.SignatureStatusUnsigned,
		AutoGenerated:      in.Trigger == TriggerQuoteAccepted,
		TriggerSource:      in.Trigger,
		GeneratedAt:        &now,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.ServiceAgreement{}).
			Where("quote_id = ? AND status NOT IN ?", quote.ID, []string{models.AgreementStatusRejected, models.AgreementStatusExpired}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.Conflict("agreement_exists")
		}
		return tx.Create(agreement).Error
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Internal(err)
	}

	writeAudit(s.DB, in.UserID, "agreement", agreement.ID, "create", "status", "", agreement.Status)
	s.Log.Info("agreement generated",
		zap.Uint("quote_id", quote.ID),
		zap.Uint("agreement_id", agreement.ID),
		zap.String("category", det.Category),
		zap.Int("confidence", det.Confidence))
	return agreement, nil
}

// AutoGenerateOnAccept fires after a quote transitions to accepted. A
// pre-existing active agreement is not an error here; it simply means
// nothing to do.
func (s *AgreementService) AutoGenerateOnAccept(quoteID, userID uint) (*models.ServiceAgreement, error) {
	ag, err := s.Generate(GenerateInput{QuoteID: quoteID, Trigger: TriggerQuoteAccepted, UserID: userID})
	if err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			return nil, nil
		}
		return nil, err
	}
	return ag, nil
}

// Transition validates and applies a lifecycle move, stamping the matching
// timestamp.
func (s *AgreementService) Transition(id uint, target string, userID uint) (*models.ServiceAgreement, error) {
	var ag models.ServiceAgreement
	if err := s.DB.First(&ag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("agreement not found")
		}
		return nil, apperr.Internal(err)
	}
	allowed, ok := agreementTransitions[ag.Status]
	if !ok {
		return nil, apperr.Validation("agreement is in a terminal status: " + ag.Status)
	}
	legal := false
	for _, t := range allowed {
		if t == target {
			legal = true
			break
		}
	}
	if !legal {
		return nil, apperr.Validation("illegal agreement transition " + ag.Status + " -> " + target)
	}

	old := ag.Status
	now := time.Now()
	ag.Status = target
	switch target {
	case models.AgreementStatusGenerated:
		ag.GeneratedAt = &now
	case models.AgreementStatusSent:
		ag.SentAt = &now
	case models.AgreementStatusAccepted:
		ag.AcceptedAt = &now
	case models.AgreementStatusRejected:
		ag.RejectedAt = &now
	case models.AgreementStatusExpired:
		ag.ExpiredAt = &now
	}
	if err := s.DB.Save(&ag).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	writeAudit(s.DB, userID, "agreement", ag.ID, "transition", "status", old, target)
	return &ag, nil
}

// Sign marks a sent or accepted agreement as signed.
func (s *AgreementService) Sign(id, userID uint) (*models.ServiceAgreement, error) {
	var ag models.ServiceAgreement
	if err := s.DB.First(&ag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("agreement not found")
		}
		return nil, apperr.Internal(err)
	}
	if ag.Status != models.AgreementStatusSent && ag.Status != models.AgreementStatusAccepted {
		return nil, apperr.Validation("only sent or accepted agreements can be signed")
	}
	if ag.SignatureStatus == models.SignatureStatusSigned {
		return &ag, nil
	}
	now := time.Now()
	ag.SignatureStatus = models.SignatureStatusSigned
	ag.SignedAt = &now
	if err := s.DB.Save(&ag).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	writeAudit(s.DB, userID, "agreement", ag.ID, "update", "signature_status", models.SignatureStatusUnsigned, models.SignatureStatusSigned)
	return &ag, nil
}

// templateFor loads an explicit template or the default for a category.
func (s *AgreementService) templateFor(templateID uint, category string) (*models.SLATemplate, error) {
	var tmpl models.SLATemplate
	if templateID != 0 {
		if err := s.DB.Preload("Variables").First(&tmpl, templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("template not found")
			}
			return nil, apperr.Internal(err)
		}
		return &tmpl, nil
	}
	err := s.DB.Preload("Variables").Where("category = ? AND is_default = ?", category, true).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// fall back to any default template
		err = s.DB.Preload("Variables").Where("is_default = ?", true).Order("id").First(&tmpl).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("no template available for category " + category)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &tmpl, nil
}

func detectorItems(items []models.QuoteItem) []detector.Item {
	out := make([]detector.Item, 0, len(items))
	for _, it := range items {
		out = append(out, detector.Item{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

// stringContext keeps only string-valued overrides as detection context.
func stringContext(overrides map[string]any) map[string]string {
	if len(overrides) == 0 {
		return nil
	}
	ctx := make(map[string]string)
	for k, v := range overrides {
		if s, ok := v.(string); ok {
			ctx[k] = s
		}
	}
	return ctx
}
