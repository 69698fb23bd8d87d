package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripfares/internal/models"
)

type MonthAggregator interface {
	AggregateMonth(ctx context.Context, q models.CalendarQuery) (*models.CalendarMonthPayload, error)
}

type CalendarHandler struct {
	calendar      MonthAggregator
	defaultOrigin string
	defaultPax    int
}

func NewCalendarHandler(calendar MonthAggregator, defaultOrigin string, defaultPax int) *CalendarHandler {
	return &CalendarHandler{
		calendar:      calendar,
		defaultOrigin: defaultOrigin,
		defaultPax:    defaultPax,
	}
}

// CalendarPrices returns the month grid. Month is 1-based.
func (h *CalendarHandler) CalendarPrices(c echo.Context) error {
	var q models.CalendarQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse query: "+err.Error())
	}
	if q.Origin == "" {
		q.Origin = h.defaultOrigin
	}
	if c.QueryParam("pax") == "" {
		q.Passengers = h.defaultPax
	}

	payload, err := h.calendar.AggregateMonth(c.Request().Context(), q)
	if err != nil {
		if isValidation(err) {
			return badRequest(c, "validation_error", err.Error())
		}
		return err
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, payload)
}
