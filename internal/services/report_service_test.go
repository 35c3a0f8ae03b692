package services

import (
	"strings"
	"testing"
	"time"

	"clinicore/internal/models"
	"clinicore/internal/testutil"
)

func TestSummarize(t *testing.T) {
	t.Run("totals_and_breakdowns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		mid := time.Date(2026, 4, 15, 12, 0, 0, 0, time.Local)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionIncome, "Consultation", 300, mid)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionIncome, "Consultation", 200, mid)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionIncome, "Procedure", 500, mid)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionExpense, "Rent", 400, mid)
		// Outside the range
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionIncome, "Consultation", 999, mid.AddDate(0, 2, 0))

		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
		to := time.Date(2026, 4, 30, 23, 59, 59, 0, time.Local)
		summary, err := svc.Summarize(doctor.ID, from, to)
		testutil.AssertNoError(t, err)

		if summary.TotalIncome != 1000 {
			t.Errorf("expected income 1000, got %v", summary.TotalIncome)
		}
		if summary.TotalExpenses != 400 {
			t.Errorf("expected expenses 400, got %v", summary.TotalExpenses)
		}
		if summary.NetProfit != 600 {
			t.Errorf("expected net 600, got %v", summary.NetProfit)
		}
		if summary.TransactionCount != 4 {
			t.Errorf("expected 4 transactions, got %d", summary.TransactionCount)
		}
		if summary.IncomeByCategory["Consultation"] != 500 {
			t.Errorf("expected Consultation 500, got %v", summary.IncomeByCategory["Consultation"])
		}
		if summary.ExpensesByCategory["Rent"] != 400 {
			t.Errorf("expected Rent 400, got %v", summary.ExpensesByCategory["Rent"])
		}
	})

	t.Run("empty_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
		summary, err := svc.Summarize(doctor.ID, from, from.AddDate(0, 1, 0))
		testutil.AssertNoError(t, err)

		if summary.TotalIncome != 0 || summary.TotalExpenses != 0 || summary.NetProfit != 0 {
			t.Errorf("expected zero totals, got %+v", summary)
		}
		if summary.TransactionCount != 0 {
			t.Errorf("expected 0 transactions, got %d", summary.TransactionCount)
		}
	})
}

func TestExportCSV(t *testing.T) {
	t.Run("layout", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		mid := time.Date(2026, 4, 15, 12, 0, 0, 0, time.Local)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionIncome, "Consultation", 300, mid)
		testutil.CreateTestTransactionOn(t, db, doctor.ID, models.TransactionExpense, "Rent", 100, mid)

		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
		to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.Local)
		content, err := svc.ExportCSV(doctor.ID, from, to)
		testutil.AssertNoError(t, err)

		out := string(content)
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

		if !strings.HasPrefix(lines[0], "Date,Type,Category,Subcategory,Amount") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.Contains(out, "2026-04-15 12:00:00,Income,Consultation") {
			t.Error("expected income row with formatted date and title-cased type")
		}
		if !strings.Contains(out, "300.00") {
			t.Error("expected two-decimal amounts")
		}
		if !strings.Contains(out, "SUMMARY") {
			t.Error("expected SUMMARY section")
		}
		if !strings.Contains(out, "Report Period:,2026-04-01 to 2026-04-30") {
			t.Error("expected report period line")
		}
		if !strings.Contains(out, "Total Income:,300.00") {
			t.Error("expected total income line")
		}
		if !strings.Contains(out, "Net Profit:,200.00") {
			t.Error("expected net profit line")
		}
		if !strings.Contains(out, "INCOME BY CATEGORY") || !strings.Contains(out, "EXPENSES BY CATEGORY") {
			t.Error("expected category breakdown sections")
		}
		if !strings.Contains(out, "Consultation,300.00,100.0%") {
			t.Error("expected income breakdown with percentage")
		}
		if !strings.Contains(out, "Rent,100.00,100.0%") {
			t.Error("expected expense breakdown with percentage")
		}
	})

	t.Run("zero_totals_have_zero_percentages", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
		content, err := svc.ExportCSV(doctor.ID, from, from.AddDate(0, 1, 0))
		testutil.AssertNoError(t, err)

		out := string(content)
		if !strings.Contains(out, "Total Transactions:,0") {
			t.Error("expected zero transaction count")
		}
	})
}

func TestGetFinanceOverview(t *testing.T) {
	t.Run("combines_ledger_and_patient_revenue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor.ID)

		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionIncome, "Consultation", 800)
		testutil.CreateTestTransaction(t, db, doctor.ID, models.TransactionExpense, "Rent", 300)

		testutil.CreateTestVisit(t, db, patient.ID, time.Now(), 200, 150)
		testutil.AssertNoError(t, db.Model(patient).Update("amount_paid", 50).Error)

		overview, err := svc.GetFinanceOverview(doctor.ID)
		testutil.AssertNoError(t, err)

		if overview.TotalIncome != 800 {
			t.Errorf("expected income 800, got %v", overview.TotalIncome)
		}
		if overview.NetProfit != 500 {
			t.Errorf("expected net 500, got %v", overview.NetProfit)
		}
		if overview.MonthIncome != 800 {
			t.Errorf("expected month income 800, got %v", overview.MonthIncome)
		}
		if overview.PatientRevenue != 200 {
			t.Errorf("expected patient revenue 200, got %v", overview.PatientRevenue)
		}
		if len(overview.RecentTransactions) != 2 {
			t.Errorf("expected 2 recent transactions, got %d", len(overview.RecentTransactions))
		}
	})
}

func TestGetClinicStats(t *testing.T) {
	t.Run("patient_and_appointment_counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		active := testutil.CreateTestPatient(t, db, doctor.ID)
		dormant := testutil.CreateTestPatient(t, db, doctor.ID)
		done := testutil.CreateTestPatient(t, db, doctor.ID)
		testutil.AssertNoError(t, db.Model(done).Update("completed", true).Error)

		// A recent visit makes a patient active; an old one does not
		testutil.CreateTestVisit(t, db, active.ID, time.Now().AddDate(0, 0, -10), 100, 100)
		testutil.CreateTestVisit(t, db, dormant.ID, time.Now().AddDate(-1, 0, 0), 100, 100)

		testutil.CreateTestAppointment(t, db, active.ID, time.Now().Add(time.Minute))
		testutil.CreateTestAppointment(t, db, active.ID, time.Now().AddDate(0, 0, 3))

		stats, err := svc.GetClinicStats(doctor.ID)
		testutil.AssertNoError(t, err)

		if stats.TotalPatients != 3 {
			t.Errorf("expected 3 patients, got %d", stats.TotalPatients)
		}
		if stats.CompletedPatients != 1 {
			t.Errorf("expected 1 completed, got %d", stats.CompletedPatients)
		}
		if stats.ActivePatients != 1 {
			t.Errorf("expected 1 active, got %d", stats.ActivePatients)
		}
		if stats.AppointmentsToday != 1 {
			t.Errorf("expected 1 appointment today, got %d", stats.AppointmentsToday)
		}
		if stats.PendingToday != 1 {
			t.Errorf("expected 1 pending today, got %d", stats.PendingToday)
		}
		if stats.UpcomingThisWeek != 2 {
			t.Errorf("expected 2 upcoming this week, got %d", stats.UpcomingThisWeek)
		}
	})

	t.Run("revenue_combines_levels", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		doctor := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor.ID)

		testutil.AssertNoError(t, db.Model(patient).Update("amount_paid", 40).Error)
		testutil.CreateTestVisit(t, db, patient.ID, time.Now(), 100, 60)
		// Last year's visit counts for nothing this year
		testutil.CreateTestVisit(t, db, patient.ID, time.Now().AddDate(-1, 0, 0), 100, 500)

		stats, err := svc.GetClinicStats(doctor.ID)
		testutil.AssertNoError(t, err)

		if stats.RevenueToday != 100 {
			t.Errorf("expected revenue today 100, got %v", stats.RevenueToday)
		}
		if stats.RevenueThisYear != 100 {
			t.Errorf("expected revenue this year 100, got %v", stats.RevenueThisYear)
		}
	})
}
