package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/services"
)

// ReportHandler handles reporting and dashboard requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseReportRange reads from/to query parameters, defaulting to the last 30
// days when absent. A bare to date extends to end of day.
func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return from, to, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return from, to, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD")
		}
		if len(v) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = t
	}
	return from, to, nil
}

// GetSummary handles financial summary requests
// @Summary     Financial summary
// @Description Get income/expense totals and per-category breakdowns for a date range (default last 30 days)
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.FinancialSummary "Financial summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := parseReportRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.Summarize(doctorID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportCSV handles CSV export requests
// @Summary     Export transactions CSV
// @Description Download the ledger for a date range as CSV with summary and category breakdowns
// @Tags        reports
// @Accept      json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {string} string "CSV content"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := parseReportRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	content, err := h.reportService.ExportCSV(doctorID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("financial_report_%s_to_%s.csv", from.Format("2006-01-02"), to.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", content)
}

// GetFinanceOverview handles the finance dashboard request
// @Summary     Finance dashboard
// @Description Get all-time and current-month totals, patient revenue, and recent transactions
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.FinanceOverview "Finance overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/finance [get]
func (h *ReportHandler) GetFinanceOverview(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.reportService.GetFinanceOverview(doctorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetClinicStats handles the clinic dashboard request
// @Summary     Clinic dashboard
// @Description Get patient, appointment, and revenue statistics for the clinic dashboard
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ClinicStats "Clinic statistics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/clinic [get]
func (h *ReportHandler) GetClinicStats(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.reportService.GetClinicStats(doctorID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
