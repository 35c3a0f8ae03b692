package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
)

// budgetService handles budget tracking business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a monthly budget for an expense category. The
// (doctor, category, year, month) scope is unique; a duplicate returns a
// conflict error before the storage layer's unique index ever fires.
func (s *budgetService) CreateBudget(doctorID uint, input BudgetInput) (*models.Budget, error) {
	if input.Category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if input.MonthlyLimit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly limit must be greater than zero")
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if input.AlertThreshold == 0 {
		input.AlertThreshold = 80
	}
	if input.AlertThreshold < 0 || input.AlertThreshold > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
	}

	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("doctor_id = ? AND category = ? AND year = ? AND month = ?",
			doctorID, input.Category, input.Year, input.Month).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrBudgetExists
	}

	budget := &models.Budget{
		DoctorID:       doctorID,
		Category:       input.Category,
		Year:           input.Year,
		Month:          input.Month,
		MonthlyLimit:   input.MonthlyLimit,
		AlertThreshold: input.AlertThreshold,
		IsActive:       true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.RecomputeSpent(tx, doctorID, input.Category, input.Year, input.Month)
	})
	if err != nil {
		return nil, err
	}

	// Reload to pick up the recomputed spent amount
	if err := s.db.First(budget, budget.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetCurrentBudgets lists the doctor's active budgets for the current month with
// derived display properties, refreshing each budget's spent amount first.
func (s *budgetService) GetCurrentBudgets(doctorID uint) ([]BudgetStatus, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var budgets []models.Budget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ? AND year = ? AND month = ? AND is_active = ?", doctorID, year, month, true).
			Order("category ASC").
			Find(&budgets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range budgets {
			if err := s.RecomputeSpent(tx, doctorID, budgets[i].Category, year, month); err != nil {
				return err
			}
		}
		// Re-read with fresh spent values
		if err := tx.Where("doctor_id = ? AND year = ? AND month = ? AND is_active = ?", doctorID, year, month, true).
			Order("category ASC").
			Find(&budgets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, BudgetStatus{
			Budget:          b,
			SpentPercentage: b.SpentPercentage(),
			RemainingAmount: b.RemainingAmount(),
			OverThreshold:   b.IsOverThreshold(),
			StatusColor:     b.StatusColor(),
		})
	}
	return statuses, nil
}

// GetBudgetByID retrieves a budget by ID for a specific doctor
func (s *budgetService) GetBudgetByID(doctorID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND doctor_id = ?", budgetID, doctorID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget changes the limit and alert threshold of an existing budget.
// The (category, year, month) scope is immutable once created.
func (s *budgetService) UpdateBudget(doctorID, budgetID uint, monthlyLimit, alertThreshold float64) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(doctorID, budgetID)
	if err != nil {
		return nil, err
	}

	if monthlyLimit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly limit must be greater than zero")
	}
	if alertThreshold < 0 || alertThreshold > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
	}

	budget.MonthlyLimit = monthlyLimit
	budget.AlertThreshold = alertThreshold

	if err := s.db.Save(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DeleteBudget removes a budget
func (s *budgetService) DeleteBudget(doctorID, budgetID uint) error {
	budget, err := s.GetBudgetByID(doctorID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetBudgetActive toggles whether a budget participates in alerting
func (s *budgetService) SetBudgetActive(doctorID, budgetID uint, active bool) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(doctorID, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(budget).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.IsActive = active
	return budget, nil
}

// RecomputeSpent resums all expense transactions in the budget's
// (category, year, month) scope into current_month_spent. A full
// resummation rather than an incremental adjustment, so the cached value
// converges even after out-of-band edits. No-op when no budget exists for
// the scope.
func (s *budgetService) RecomputeSpent(tx *gorm.DB, doctorID uint, category string, year, month int) error {
	var budget models.Budget
	if err := tx.Where("doctor_id = ? AND category = ? AND year = ? AND month = ?",
		doctorID, category, year, month).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var spent float64
	if err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("doctor_id = ? AND type = ? AND category = ? AND transaction_date >= ? AND transaction_date < ?",
			doctorID, models.TransactionExpense, category, monthStart, monthEnd).
		Scan(&spent).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&budget).Update("current_month_spent", spent).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
