package services

// PenaltyBreakdown is the outcome of a breach-penalty calculation.
type PenaltyBreakdown struct {
	Calculated float64 `json:"calculated"`
	CapAmount  float64 `json:"cap_amount"`
	Final      float64 `json:"final"`
}

// ComputeBreachPenalty applies the contractual formula:
// min(monthly_revenue x rate% x severity, monthly_revenue x cap%).
// Rate and cap are expressed in percent (0.5 means 0.5%).
func ComputeBreachPenalty(monthlyRevenue, ratePercent, severity, capPercent float64) PenaltyBreakdown {
	if monthlyRevenue < 0 {
		monthlyRevenue = 0
	}
	if severity < 0 {
		severity = 0
	}
	calculated := monthlyRevenue * ratePercent / 100 * severity
	capAmount := monthlyRevenue * capPercent / 100
	final := calculated
	if final > capAmount {
		final = capAmount
	}
	return PenaltyBreakdown{Calculated: calculated, CapAmount: capAmount, Final: final}
}
