package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"clinicore/internal/models"
	"clinicore/internal/pagination"
	"clinicore/internal/testutil"
)

func newTestLedgerService(db *gorm.DB) LedgerServicer {
	return NewLedgerService(db, NewBudgetService(db))
}

func TestRecordTransaction(t *testing.T) {
	t.Run("valid_with_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionIncome,
			Category: "Consultation",
			Amount:   120,
		})
		testutil.AssertNoError(t, err)

		if entry.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if entry.PaymentMethod != models.PaymentCash {
			t.Errorf("expected default payment method cash, got %s", entry.PaymentMethod)
		}
		if entry.ReferenceType != models.ReferenceManual {
			t.Errorf("expected default reference type manual, got %s", entry.ReferenceType)
		}
		if entry.TransactionDate.IsZero() {
			t.Error("expected transaction date defaulted to now")
		}
	})

	t.Run("expense_recomputes_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Supplies", now.Year(), int(now.Month()), 1000)

		_, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Supplies",
			Amount:   250,
		})
		testutil.AssertNoError(t, err)

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 250 {
			t.Errorf("expected spent 250, got %v", got.CurrentMonthSpent)
		}
	})

	t.Run("income_leaves_budget_alone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Supplies", now.Year(), int(now.Month()), 1000)

		_, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionIncome,
			Category: "Supplies",
			Amount:   250,
		})
		testutil.AssertNoError(t, err)

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 0 {
			t.Errorf("expected spent 0, got %v", got.CurrentMonthSpent)
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		_, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type: models.TransactionIncome, Category: "X", Amount: 0,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.RecordTransaction(doctor.ID, TransactionInput{
			Type: "transfer", Category: "X", Amount: 10,
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")

		_, err = svc.RecordTransaction(doctor.ID, TransactionInput{
			Type: models.TransactionIncome, Amount: 10,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("moving_expense_recomputes_both_scopes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		rentBudget := testutil.CreateTestBudget(t, db, doctor.ID, "Rent", now.Year(), int(now.Month()), 1000)
		suppliesBudget := testutil.CreateTestBudget(t, db, doctor.ID, "Supplies", now.Year(), int(now.Month()), 1000)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(doctor.ID, entry.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Supplies",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		var rent, supplies models.Budget
		testutil.AssertNoError(t, db.First(&rent, rentBudget.ID).Error)
		testutil.AssertNoError(t, db.First(&supplies, suppliesBudget.ID).Error)

		if rent.CurrentMonthSpent != 0 {
			t.Errorf("expected old scope emptied, got %v", rent.CurrentMonthSpent)
		}
		if supplies.CurrentMonthSpent != 400 {
			t.Errorf("expected new scope 400, got %v", supplies.CurrentMonthSpent)
		}
	})

	t.Run("amount_change_same_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Rent", now.Year(), int(now.Month()), 1000)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(doctor.ID, entry.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   150,
		})
		testutil.AssertNoError(t, err)

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 150 {
			t.Errorf("expected spent 150, got %v", got.CurrentMonthSpent)
		}
	})

	t.Run("income_to_expense_same_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Rent", now.Year(), int(now.Month()), 1000)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionIncome,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(doctor.ID, entry.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 400 {
			t.Errorf("expected spent 400, got %v", got.CurrentMonthSpent)
		}
	})

	t.Run("expense_to_income_same_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Rent", now.Year(), int(now.Month()), 1000)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(doctor.ID, entry.ID, TransactionInput{
			Type:     models.TransactionIncome,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 0 {
			t.Errorf("expected spent 0 after type flip, got %v", got.CurrentMonthSpent)
		}
	})

	t.Run("wrong_doctor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor1 := testutil.CreateTestDoctor(t, db)
		doctor2 := testutil.CreateTestDoctor(t, db)

		entry := testutil.CreateTestTransaction(t, db, doctor1.ID, models.TransactionIncome, "Consultation", 100)

		_, err := svc.UpdateTransaction(doctor2.ID, entry.ID, TransactionInput{
			Type: models.TransactionIncome, Category: "Consultation", Amount: 200,
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("expense_delete_recomputes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		now := time.Now()
		budget := testutil.CreateTestBudget(t, db, doctor.ID, "Rent", now.Year(), int(now.Month()), 1000)

		entry, err := svc.RecordTransaction(doctor.ID, TransactionInput{
			Type:     models.TransactionExpense,
			Category: "Rent",
			Amount:   400,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(doctor.ID, entry.ID))

		var got models.Budget
		testutil.AssertNoError(t, db.First(&got, budget.ID).Error)
		if got.CurrentMonthSpent != 0 {
			t.Errorf("expected spent back to 0, got %v", got.CurrentMonthSpent)
		}

		_, err = svc.GetTransactionByID(doctor.ID, entry.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetDoctorTransactions(t *testing.T) {
	t.Run("filters_and_pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 100)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 300)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionExpense, "Rent", 500)

		incomeType := models.TransactionIncome
		result, err := svc.GetDoctorTransactions(doctor.ID, pagination.PageRequest{Page: 1, PageSize: 20}, TransactionFilter{Type: &incomeType})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 income entries, got %d", result.TotalItems)
		}

		minAmount := 200.0
		result, err = svc.GetDoctorTransactions(doctor.ID, pagination.PageRequest{Page: 1, PageSize: 20}, TransactionFilter{MinAmount: &minAmount})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 entries at or above 200, got %d", result.TotalItems)
		}
	})

	t.Run("excludes_other_doctors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor1 := testutil.CreateTestDoctor(t, db)
		doctor2 := testutil.CreateTestDoctor(t, db)

		testutil.CreateTestTransaction(t, db, doctor1.ID, models.TransactionIncome, "Consultation", 100)
		testutil.CreateTestTransaction(t, db, doctor2.ID, models.TransactionIncome, "Consultation", 100)

		result, err := svc.GetDoctorTransactions(doctor1.ID, pagination.PageRequest{Page: 1, PageSize: 20}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 entry, got %d", result.TotalItems)
		}
	})
}

func TestGetFilteredTotals(t *testing.T) {
	t.Run("sums_income_and_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 300)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Procedure", 200)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionExpense, "Rent", 150)

		totals, err := svc.GetFilteredTotals(doctor.ID, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if totals.TotalIncome != 500 {
			t.Errorf("expected income 500, got %v", totals.TotalIncome)
		}
		if totals.TotalExpenses != 150 {
			t.Errorf("expected expenses 150, got %v", totals.TotalExpenses)
		}
		if totals.NetProfit != 350 {
			t.Errorf("expected net 350, got %v", totals.NetProfit)
		}
		if totals.Count != 3 {
			t.Errorf("expected count 3, got %d", totals.Count)
		}
	})
}

func TestGetFilterOptions(t *testing.T) {
	t.Run("distinct_values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLedgerService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 100)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 200)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionExpense, "Rent", 300)

		options, err := svc.GetFilterOptions(doctor.ID)
		testutil.AssertNoError(t, err)

		if len(options.Categories) != 2 {
			t.Errorf("expected 2 categories, got %v", options.Categories)
		}
		if len(options.PaymentMethods) != 1 {
			t.Errorf("expected 1 payment method, got %v", options.PaymentMethods)
		}
	})
}
