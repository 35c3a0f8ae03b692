package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/services"
)

// CalendarHandler handles calendar event feed requests.
type CalendarHandler struct {
	calendarService services.CalendarServicer
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService services.CalendarServicer) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// GetEvents handles calendar event feed requests
// @Summary     Calendar events
// @Description Get visit, appointment, and next-visit reminder events, optionally bounded by a date range
// @Tags        calendar
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {array}  services.CalendarEvent "Calendar events"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /calendar/events [get]
func (h *CalendarHandler) GetEvents(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		from, err = parseFlexibleTime(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD"))
			return
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = parseFlexibleTime(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		if len(v) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}

	events, err := h.calendarService.GetEvents(doctorID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
