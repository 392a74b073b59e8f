package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mokoena/sla-app/internal/models"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2 January 2006",
}

// coerce converts a raw resolved value to the variable's declared type.
// It never fails: bad numbers warn and become 0, bad dates become now.
func coerce(v models.TemplateVariable, raw any, warn func(string)) any {
	switch v.Type {
	case models.VarTypeNumber:
		f, ok := toFloat(raw)
		if !ok {
			warn(fmt.Sprintf("variable %s: non-numeric value %v, using 0", v.Name, raw))
			f = 0
		}
		if v.Min != nil && f < *v.Min {
			f = *v.Min
		}
		if v.Max != nil && f > *v.Max {
			f = *v.Max
		}
		return f
	case models.VarTypeDate:
		return toDate(raw)
	case models.VarTypeBoolean:
		return toBool(raw)
	default:
		return stringify(raw)
	}
}

func toFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toDate(raw any) time.Time {
	switch t := raw.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed
			}
		}
	}
	return time.Now()
}

func toBool(raw any) bool {
	switch t := raw.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "true" || s == "1" {
			return true
		}
		if s == "false" || s == "0" || s == "" {
			return false
		}
		// standard truthiness: any other non-empty string is true
		return true
	default:
		if f, ok := toFloat(raw); ok {
			return f != 0
		}
		return raw != nil
	}
}

func stringify(raw any) string {
	switch t := raw.(type) {
	case string:
		return t
	case time.Time:
		return t.Format("2 January 2006")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// formatValue renders the coerced value for humans: this is what template
// substitution inserts.
func formatValue(varType string, value any) string {
	switch varType {
	case models.VarTypeNumber:
		f, _ := toFloat(value)
		return strconv.FormatFloat(f, 'f', -1, 64)
	case models.VarTypeDate:
		if t, ok := value.(time.Time); ok {
			return t.Format("2 January 2006")
		}
		return stringify(value)
	case models.VarTypeBoolean:
		if b, ok := value.(bool); ok && b {
			return "Yes"
		}
		return "No"
	default:
		return stringify(value)
	}
}
