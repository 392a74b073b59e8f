package detector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mokoena/sla-app/internal/apperr"
)

// Input carries the free-text signals detection scores. Quantities and
// prices feed the secondary range checks only.
type Input struct {
	QuoteID       uint
	ClientName    string
	ClientCompany string
	Notes         string
	Terms         string
	Items         []Item
	Total         float64 // quote total; computed from items when zero
	Context       map[string]string
}

type Item struct {
	Description string
	Quantity    float64
	UnitPrice   float64
}

// Confidence bands. Anything below Low is "minimal".
const (
	ConfidenceHigh   = 80
	ConfidenceMedium = 60
	ConfidenceLow    = 40

	noMatchConfidence = 20

	basePoints      = 50
	pointsPerHit    = 10
	valueBonus      = 10
	itemCountBonus  = 5
	maxConfidence   = 100
)

// Result is the detection outcome.
type Result struct {
	Category   string   `json:"category"`
	Label      string   `json:"label"`
	Confidence int      `json:"confidence"`
	Band       string   `json:"band"`
	Rationale  string   `json:"rationale"`
	Matched    []string `json:"matched_keywords,omitempty"`
}

// Band names the confidence tier for a score.
func Band(confidence int) string {
	switch {
	case confidence >= ConfidenceHigh:
		return "high"
	case confidence >= ConfidenceMedium:
		return "medium"
	case confidence >= ConfidenceLow:
		return "low"
	default:
		return "minimal"
	}
}

// Detect classifies the quote into a package category. It only errors on
// missing identity (quote id, client name/company); every other input
// degrades to the general-website default.
func Detect(in Input) (Result, error) {
	if in.QuoteID == 0 {
		return Result{}, apperr.Validation("quote id is required")
	}
	if strings.TrimSpace(in.ClientName) == "" && strings.TrimSpace(in.ClientCompany) == "" {
		return Result{}, apperr.Validation("client name or company is required")
	}

	text := corpus(in)
	total := in.Total
	if total == 0 {
		for _, it := range in.Items {
			total += it.Quantity * it.UnitPrice
		}
	}
	itemCount := float64(len(in.Items))

	var best *categorySpec
	var bestHits []string
	for i := range catalog {
		c := &catalog[i]
		hits := matchKeywords(text, c.Keywords)
		// Catalog is priority-ordered, so a strict > keeps the documented
		// tie-break: ecom > business_process > marketing > general_website.
		if best == nil || len(hits) > len(bestHits) {
			best = c
			bestHits = hits
		}
	}

	if len(bestHits) == 0 {
		def := CategoryGeneralWebsite
		return Result{
			Category:   def,
			Label:      CategoryLabel(def),
			Confidence: noMatchConfidence,
			Band:       Band(noMatchConfidence),
			Rationale:  "no category keywords matched; defaulted to general website",
		}, nil
	}

	confidence := basePoints + pointsPerHit*len(bestHits)
	reasons := []string{fmt.Sprintf("%d keyword match(es): %s", len(bestHits), strings.Join(bestHits, ", "))}
	if best.ValueRange.contains(total) {
		confidence += valueBonus
		reasons = append(reasons, fmt.Sprintf("total %.0f within typical range", total))
	}
	if best.ItemRange.contains(itemCount) {
		confidence += itemCountBonus
		reasons = append(reasons, fmt.Sprintf("%d line item(s) within typical range", len(in.Items)))
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return Result{
		Category:   best.Key,
		Label:      best.Label,
		Confidence: confidence,
		Band:       Band(confidence),
		Rationale:  strings.Join(reasons, "; "),
		Matched:    bestHits,
	}, nil
}

// corpus flattens every free-text signal into one lowercase string.
func corpus(in Input) string {
	parts := make([]string, 0, len(in.Items)+len(in.Context)+4)
	for _, it := range in.Items {
		parts = append(parts, it.Description)
	}
	parts = append(parts, in.Notes, in.Terms, in.ClientName, in.ClientCompany)
	// Context map iteration order is irrelevant for substring matching, but
	// sort the keys anyway so rationale/corpus construction is reproducible.
	keys := make([]string, 0, len(in.Context))
	for k := range in.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, in.Context[k])
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// matchKeywords returns the distinct keywords present as substrings.
func matchKeywords(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
