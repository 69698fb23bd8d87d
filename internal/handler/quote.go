package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/pricing"
	"github.com/dharmasatrya/tripfares/internal/timeutil"
	"github.com/dharmasatrya/tripfares/pkg/currency"
)

type QuoteHandler struct {
	rules  pricing.Rules
	extras pricing.Extras
}

func NewQuoteHandler(rules pricing.Rules, extras pricing.Extras) *QuoteHandler {
	return &QuoteHandler{rules: rules, extras: extras}
}

type QuoteResponse struct {
	pricing.Quote
	Date           string `json:"date"`
	Passengers     int    `json:"pax"`
	PerPersonLabel string `json:"per_person_label"`
	TotalLabel     string `json:"total_label"`
	PayNowLabel    string `json:"pay_now_label"`
	PayLaterLabel  string `json:"pay_later_label"`
}

// Quote prices the full package for a departure date and chosen flight.
func (h *QuoteHandler) Quote(c echo.Context) error {
	dateStr := c.QueryParam("date")
	date, err := timeutil.ParseDate(dateStr)
	if err != nil {
		return badRequest(c, "validation_error", "date must be a YYYY-MM-DD date")
	}

	pax := 1
	if v := c.QueryParam("pax"); v != "" {
		pax, err = strconv.Atoi(v)
		if err != nil || pax < models.MinPassengers || pax > models.MaxPassengers {
			return badRequest(c, "validation_error", models.ErrInvalidPassengers.Error())
		}
	}

	flight := 0
	if v := c.QueryParam("flight"); v != "" {
		flight, err = strconv.Atoi(v)
		if err != nil || flight < 0 {
			return badRequest(c, "validation_error", "flight must be a non-negative whole amount")
		}
	}

	singles := 0
	if v := c.QueryParam("singles"); v != "" {
		singles, err = strconv.Atoi(v)
		if err != nil || singles < 0 || singles > pax {
			return badRequest(c, "validation_error", "singles must be between 0 and pax")
		}
	}

	lux, _ := strconv.ParseBool(c.QueryParam("lux"))
	insurance, _ := strconv.ParseBool(c.QueryParam("insurance"))

	q := h.rules.Quote(pricing.QuoteInput{
		Date:            date,
		Passengers:      pax,
		FlightPerPerson: flight,
		Luxury:          lux,
		Insurance:       insurance,
		SingleRooms:     singles,
	}, h.extras)

	return c.JSON(http.StatusOK, QuoteResponse{
		Quote:          q,
		Date:           dateStr,
		Passengers:     pax,
		PerPersonLabel: currency.FormatEUR(float64(q.PerPerson)),
		TotalLabel:     currency.FormatEUR(float64(q.Total)),
		PayNowLabel:    currency.FormatEUR(float64(q.PayNow)),
		PayLaterLabel:  currency.FormatEUR(float64(q.PayLater)),
	})
}
