package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
)

// reportService handles reporting and aggregation over the ledger and the
// clinic's scheduling data.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// Summarize aggregates ledger activity in a date range into totals and
// per-category breakdowns. Entries without a category are reported under
// "Uncategorized".
func (s *reportService) Summarize(doctorID uint, from, to time.Time) (*FinancialSummary, error) {
	transactions, err := s.transactionsInRange(doctorID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &FinancialSummary{
		IncomeByCategory:   make(map[string]float64),
		ExpensesByCategory: make(map[string]float64),
		TransactionCount:   int64(len(transactions)),
	}

	for _, t := range transactions {
		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}
		switch t.Type {
		case models.TransactionIncome:
			summary.TotalIncome += t.Amount
			summary.IncomeByCategory[category] += t.Amount
		case models.TransactionExpense:
			summary.TotalExpenses += t.Amount
			summary.ExpensesByCategory[category] += t.Amount
		}
	}
	summary.NetProfit = summary.TotalIncome - summary.TotalExpenses

	return summary, nil
}

// ExportCSV renders the ledger for a date range as CSV: one row per entry,
// then a summary block and per-category breakdowns with percentages.
func (s *reportService) ExportCSV(doctorID uint, from, to time.Time) ([]byte, error) {
	transactions, err := s.transactionsInRange(doctorID, from, to)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summarize(doctorID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{
		"Date", "Type", "Category", "Subcategory", "Amount",
		"Description", "Payment Method", "Reference Type", "Reference ID", "Notes",
	})

	for _, t := range transactions {
		referenceID := ""
		if t.ReferenceID != nil {
			referenceID = strconv.FormatUint(uint64(*t.ReferenceID), 10)
		}
		_ = w.Write([]string{
			t.TransactionDate.Format("2006-01-02 15:04:05"),
			titleCase(string(t.Type)),
			t.Category,
			t.Subcategory,
			fmt.Sprintf("%.2f", t.Amount),
			t.Description,
			string(t.PaymentMethod),
			string(t.ReferenceType),
			referenceID,
			t.Notes,
		})
	}

	_ = w.Write([]string{})
	_ = w.Write([]string{"SUMMARY"})
	_ = w.Write([]string{"Report Period:", from.Format("2006-01-02") + " to " + to.Format("2006-01-02")})
	_ = w.Write([]string{"Total Income:", fmt.Sprintf("%.2f", summary.TotalIncome)})
	_ = w.Write([]string{"Total Expenses:", fmt.Sprintf("%.2f", summary.TotalExpenses)})
	_ = w.Write([]string{"Net Profit:", fmt.Sprintf("%.2f", summary.NetProfit)})
	_ = w.Write([]string{"Total Transactions:", strconv.FormatInt(summary.TransactionCount, 10)})

	_ = w.Write([]string{})
	_ = w.Write([]string{"INCOME BY CATEGORY"})
	writeCategoryBreakdown(w, summary.IncomeByCategory, summary.TotalIncome)

	_ = w.Write([]string{})
	_ = w.Write([]string{"EXPENSES BY CATEGORY"})
	writeCategoryBreakdown(w, summary.ExpensesByCategory, summary.TotalExpenses)

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

func writeCategoryBreakdown(w *csv.Writer, byCategory map[string]float64, total float64) {
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		amount := byCategory[category]
		percentage := 0.0
		if total > 0 {
			percentage = amount / total * 100
		}
		_ = w.Write([]string{category, fmt.Sprintf("%.2f", amount), fmt.Sprintf("%.1f%%", percentage)})
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func (s *reportService) transactionsInRange(doctorID uint, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Where("doctor_id = ? AND transaction_date >= ? AND transaction_date <= ?", doctorID, from, to).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetFinanceOverview builds the finance dashboard: all-time and
// current-month ledger totals, patient revenue, and recent activity.
// Patient revenue sums visit-level and patient-level paid amounts, which
// are independent accumulators.
func (s *reportService) GetFinanceOverview(doctorID uint) (*FinanceOverview, error) {
	overview := &FinanceOverview{}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	sums := []struct {
		dest    *float64
		txnType models.TransactionType
		from    *time.Time
		to      *time.Time
	}{
		{&overview.TotalIncome, models.TransactionIncome, nil, nil},
		{&overview.TotalExpenses, models.TransactionExpense, nil, nil},
		{&overview.MonthIncome, models.TransactionIncome, &monthStart, &monthEnd},
		{&overview.MonthExpenses, models.TransactionExpense, &monthStart, &monthEnd},
	}
	for _, sum := range sums {
		q := s.db.Model(&models.Transaction{}).
			Where("doctor_id = ? AND type = ?", doctorID, sum.txnType)
		if sum.from != nil {
			q = q.Where("transaction_date >= ? AND transaction_date < ?", *sum.from, *sum.to)
		}
		if err := q.Select("COALESCE(SUM(amount), 0)").Scan(sum.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	overview.NetProfit = overview.TotalIncome - overview.TotalExpenses
	overview.MonthProfit = overview.MonthIncome - overview.MonthExpenses

	var visitPaid, patientPaid float64
	if err := s.db.Model(&models.Visit{}).
		Where("patient_id IN (SELECT id FROM patients WHERE doctor_id = ?)", doctorID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&visitPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Patient{}).
		Where("doctor_id = ?", doctorID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&patientPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	overview.PatientRevenue = visitPaid + patientPaid

	if err := s.db.Where("doctor_id = ?", doctorID).
		Order("transaction_date DESC").
		Limit(10).
		Find(&overview.RecentTransactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return overview, nil
}

// GetClinicStats builds the clinic dashboard statistics. Revenue figures
// combine the patient-level paid accumulators with visit payments in each
// period; active patients are those with a visit or appointment in the last
// 180 days.
func (s *reportService) GetClinicStats(doctorID uint) (*ClinicStats, error) {
	stats := &ClinicStats{}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	todayEnd := todayStart.AddDate(0, 0, 1)
	weekStart := todayStart.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.Local)
	yearEnd := yearStart.AddDate(1, 0, 0)

	if err := s.db.Model(&models.Patient{}).Where("doctor_id = ?", doctorID).
		Count(&stats.TotalPatients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Patient{}).Where("doctor_id = ? AND completed = ?", doctorID, true).
		Count(&stats.CompletedPatients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Patient{}).
		Where("doctor_id = ? AND first_visit >= ? AND first_visit < ?", doctorID, monthStart, monthEnd).
		Count(&stats.NewPatientsThisMonth).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sixMonthsAgo := now.AddDate(0, 0, -180)
	var withVisits, withAppointments int64
	if err := s.db.Model(&models.Patient{}).
		Where("doctor_id = ? AND id IN (SELECT patient_id FROM visits WHERE visit_date >= ?)", doctorID, sixMonthsAgo).
		Count(&withVisits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Patient{}).
		Where("doctor_id = ? AND id IN (SELECT patient_id FROM appointments WHERE appointment_date >= ?)", doctorID, sixMonthsAgo).
		Count(&withAppointments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.ActivePatients = withVisits
	if withAppointments > stats.ActivePatients {
		stats.ActivePatients = withAppointments
	}

	appointmentCounts := []struct {
		dest *int64
		from time.Time
		to   time.Time
	}{
		{&stats.AppointmentsToday, todayStart, todayEnd},
		{&stats.AppointmentsThisWeek, weekStart, weekEnd},
		{&stats.AppointmentsThisMonth, monthStart, monthEnd},
	}
	for _, c := range appointmentCounts {
		q := s.db.Model(&models.Appointment{}).
			Where("appointment_date >= ? AND appointment_date < ?", c.from, c.to)
		if err := ownedPatientScope(q, doctorID).Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	statusToday := []struct {
		dest   *int64
		status models.AppointmentStatus
	}{
		{&stats.CompletedToday, models.AppointmentCompleted},
		{&stats.PendingToday, models.AppointmentScheduled},
	}
	for _, c := range statusToday {
		q := s.db.Model(&models.Appointment{}).
			Where("appointment_date >= ? AND appointment_date < ? AND status = ?", todayStart, todayEnd, c.status)
		if err := ownedPatientScope(q, doctorID).Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	var patientPaid float64
	if err := s.db.Model(&models.Patient{}).
		Where("doctor_id = ?", doctorID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&patientPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	revenues := []struct {
		dest *float64
		from time.Time
		to   time.Time
	}{
		{&stats.RevenueToday, todayStart, todayEnd},
		{&stats.RevenueThisMonth, monthStart, monthEnd},
		{&stats.RevenueThisYear, yearStart, yearEnd},
	}
	for _, r := range revenues {
		var visitPaid float64
		q := s.db.Model(&models.Visit{}).
			Where("visit_date >= ? AND visit_date < ?", r.from, r.to)
		if err := ownedPatientScope(q, doctorID).
			Select("COALESCE(SUM(amount_paid), 0)").
			Scan(&visitPaid).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		*r.dest = patientPaid + visitPaid
	}

	upcoming := s.db.Model(&models.Appointment{}).
		Where("appointment_date >= ? AND appointment_date <= ? AND status = ?",
			now, todayStart.AddDate(0, 0, 7), models.AppointmentScheduled)
	if err := ownedPatientScope(upcoming, doctorID).Count(&stats.UpcomingThisWeek).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return stats, nil
}
