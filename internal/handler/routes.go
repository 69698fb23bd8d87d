package handler

import "github.com/labstack/echo/v4"

type Handlers struct {
	Search   *SearchHandler
	Calendar *CalendarHandler
	Prewarm  *PrewarmHandler
	Quote    *QuoteHandler
	Env      echo.HandlerFunc
}

// Register mounts the public routes at the root and again under /api, which
// is where the booking widget's reverse proxy forwards them.
func (h Handlers) Register(e *echo.Echo) {
	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		g.GET("/flight-options", h.Search.FlightOptions)
		g.GET("/calendar-prices", h.Calendar.CalendarPrices)
		g.GET("/prewarm", h.Prewarm.Prewarm)
		g.GET("/quote", h.Quote.Quote)
		if h.Env != nil {
			g.GET("/_env", h.Env)
		}
	}
	e.GET("/health", HealthHandler)
}
