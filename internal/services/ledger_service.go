package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// ledgerService handles the financial ledger. Every expense write recomputes
// the affected budget scope inside the same database transaction, so budget
// caches can never drift from the ledger within a request.
type ledgerService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, budgetService BudgetServicer) LedgerServicer {
	return &ledgerService{
		db:            db,
		budgetService: budgetService,
	}
}

// RecordTransaction creates a new ledger entry for a doctor
func (s *ledgerService) RecordTransaction(doctorID uint, input TransactionInput) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.RecordTransactionTx(tx, doctorID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordTransactionTx creates a ledger entry inside the caller's transaction.
// Used by the visit service to derive payment entries atomically with the
// visit write.
func (s *ledgerService) RecordTransactionTx(tx *gorm.DB, doctorID uint, input TransactionInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionIncome && input.Type != models.TransactionExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = time.Now()
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentCash
	}
	if input.ReferenceType == "" {
		input.ReferenceType = models.ReferenceManual
	}

	transaction := &models.Transaction{
		DoctorID:        doctorID,
		Type:            input.Type,
		Category:        input.Category,
		Subcategory:     input.Subcategory,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
		PaymentMethod:   input.PaymentMethod,
		ReferenceType:   input.ReferenceType,
		ReferenceID:     input.ReferenceID,
		Notes:           input.Notes,
	}

	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transaction.Type == models.TransactionExpense {
		if err := s.recomputeScope(tx, doctorID, transaction.Category, transaction.TransactionDate); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

// UpdateTransaction edits an existing ledger entry. Budgets are recomputed
// for both the entry's old scope and its new scope whenever either side is
// an expense, so moving an expense between categories or months updates
// both caches.
func (s *ledgerService) UpdateTransaction(doctorID, transactionID uint, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(doctorID, transactionID)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionIncome && input.Type != models.TransactionExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = transaction.TransactionDate
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = transaction.PaymentMethod
	}

	oldType := transaction.Type
	oldCategory := transaction.Category
	oldDate := transaction.TransactionDate

	transaction.Type = input.Type
	transaction.Category = input.Category
	transaction.Subcategory = input.Subcategory
	transaction.Amount = input.Amount
	transaction.Description = input.Description
	transaction.TransactionDate = input.TransactionDate
	transaction.PaymentMethod = input.PaymentMethod
	transaction.Notes = input.Notes

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if oldType == models.TransactionExpense {
			if err := s.recomputeScope(tx, doctorID, oldCategory, oldDate); err != nil {
				return err
			}
		}
		if transaction.Type == models.TransactionExpense &&
			(oldType != models.TransactionExpense ||
				!sameScope(oldCategory, oldDate, transaction.Category, transaction.TransactionDate)) {
			if err := s.recomputeScope(tx, doctorID, transaction.Category, transaction.TransactionDate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction removes a ledger entry and recomputes its budget scope
// when the entry was an expense.
func (s *ledgerService) DeleteTransaction(doctorID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(doctorID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if transaction.Type == models.TransactionExpense {
			return s.recomputeScope(tx, doctorID, transaction.Category, transaction.TransactionDate)
		}
		return nil
	})
}

// GetTransactionByID retrieves a transaction by ID for a specific doctor
func (s *ledgerService) GetTransactionByID(doctorID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND doctor_id = ?", transactionID, doctorID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetDoctorTransactions retrieves a paginated, filtered list of a doctor's
// ledger entries, newest first.
func (s *ledgerService) GetDoctorTransactions(doctorID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("doctor_id = ?", doctorID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFilterOptions lists the distinct categories and payment methods present
// in the doctor's ledger, for filter dropdowns.
func (s *ledgerService) GetFilterOptions(doctorID uint) (*TransactionFilterOptions, error) {
	options := &TransactionFilterOptions{}

	if err := s.db.Model(&models.Transaction{}).
		Where("doctor_id = ?", doctorID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &options.Categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&models.Transaction{}).
		Where("doctor_id = ?", doctorID).
		Distinct("payment_method").
		Order("payment_method ASC").
		Pluck("payment_method", &options.PaymentMethods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return options, nil
}

// GetFilteredTotals aggregates the transactions matching a filter.
func (s *ledgerService) GetFilteredTotals(doctorID uint, filter TransactionFilter) (*TransactionTotals, error) {
	totals := &TransactionTotals{}

	base := s.db.Model(&models.Transaction{}).Where("doctor_id = ?", doctorID)
	base = applyTransactionFilters(base, filter)

	if err := base.Session(&gorm.Session{}).Count(&totals.Count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("type = ?", models.TransactionIncome).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totals.TotalIncome).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("type = ?", models.TransactionExpense).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totals.TotalExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	totals.NetProfit = totals.TotalIncome - totals.TotalExpenses

	return totals, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *f.PaymentMethod)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

func (s *ledgerService) recomputeScope(tx *gorm.DB, doctorID uint, category string, date time.Time) error {
	return s.budgetService.RecomputeSpent(tx, doctorID, category, date.Year(), int(date.Month()))
}

func sameScope(catA string, dateA time.Time, catB string, dateB time.Time) bool {
	return catA == catB && dateA.Year() == dateB.Year() && dateA.Month() == dateB.Month()
}
