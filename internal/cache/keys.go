package cache

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/tripfares/internal/models"
)

const keyVersion = "v1"

// DayKey addresses one departure date of the calendar.
func DayKey(origin string, pax int, date string) string {
	return fmt.Sprintf("cal:%s:day:%s:%d:%s", keyVersion, strings.ToUpper(origin), pax, date)
}

// MonthKey addresses a whole calendar month; month is 1-based.
func MonthKey(origin string, pax, year, month int) string {
	return fmt.Sprintf("cal:%s:month:%s:%d:%04d-%02d", keyVersion, strings.ToUpper(origin), pax, year, month)
}

func SearchKey(q models.SearchQuery) string {
	return fmt.Sprintf("flights:%s:%s:%d:%s:%s:%d",
		keyVersion, strings.ToUpper(q.Origin), q.Passengers, q.DepartureDate, q.ReturnDate, q.Limit)
}
