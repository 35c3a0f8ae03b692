package models

// Budget caps monthly spending for one expense category. CurrentMonthSpent
// is a derived cache recomputed from the ledger inside every write that can
// affect it; treat it as read-only outside the budget service.
type Budget struct {
	Base
	DoctorID          uint    `gorm:"not null;index;uniqueIndex:idx_doctor_budget_scope" json:"doctor_id"`
	Category          string  `gorm:"size:100;not null;uniqueIndex:idx_doctor_budget_scope" json:"category"`
	Year              int     `gorm:"not null;uniqueIndex:idx_doctor_budget_scope" json:"year"`
	Month             int     `gorm:"not null;uniqueIndex:idx_doctor_budget_scope" json:"month"`
	MonthlyLimit      float64 `gorm:"not null" json:"monthly_limit"`
	CurrentMonthSpent float64 `gorm:"default:0" json:"current_month_spent"`
	AlertThreshold    float64 `gorm:"default:80" json:"alert_threshold"`
	IsActive          bool    `gorm:"default:true" json:"is_active"`

	// Relationships
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// SpentPercentage returns spend as a percentage of the limit, 0 when the
// limit is not positive.
func (b *Budget) SpentPercentage() float64 {
	if b.MonthlyLimit <= 0 {
		return 0
	}
	return b.CurrentMonthSpent / b.MonthlyLimit * 100
}

// RemainingAmount may go negative when the budget is exceeded.
func (b *Budget) RemainingAmount() float64 {
	return b.MonthlyLimit - b.CurrentMonthSpent
}

func (b *Budget) IsOverThreshold() bool {
	return b.SpentPercentage() >= b.AlertThreshold
}

// StatusColor buckets the budget for display: under half the limit is "ok",
// at or past the alert threshold is "danger", in between is "warning".
func (b *Budget) StatusColor() string {
	pct := b.SpentPercentage()
	switch {
	case pct >= b.AlertThreshold:
		return "danger"
	case pct >= 50:
		return "warning"
	default:
		return "ok"
	}
}
