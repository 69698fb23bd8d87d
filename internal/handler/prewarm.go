package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/prewarm"
)

// MaxPrewarmJobs caps one request: 5 origins × 6 pax × 12 months.
const MaxPrewarmJobs = 360

type PrewarmRunner interface {
	Run(ctx context.Context, jobs []prewarm.Job) prewarm.Summary
}

type PrewarmHandler struct {
	runner      PrewarmRunner
	dispatcher  prewarm.Dispatcher
	origins     []string
	monthsAhead int
	now         func() time.Time
}

func NewPrewarmHandler(runner PrewarmRunner, dispatcher prewarm.Dispatcher, origins []string, monthsAhead int) *PrewarmHandler {
	return &PrewarmHandler{
		runner:      runner,
		dispatcher:  dispatcher,
		origins:     origins,
		monthsAhead: monthsAhead,
		now:         time.Now,
	}
}

type PrewarmAccepted struct {
	BatchID string `json:"batch_id"`
	Jobs    int    `json:"jobs"`
}

// Prewarm recomputes calendar months for origins × pax × months, either
// inline (returning a summary) or, with async=1, through the job queue.
func (h *PrewarmHandler) Prewarm(c echo.Context) error {
	opts := prewarm.Options{
		Origins:     c.QueryParam("origins"),
		Pax:         c.QueryParam("pax"),
		Months:      c.QueryParam("months"),
		MonthsAhead: c.QueryParam("months_ahead"),
		Year:        c.QueryParam("year"),
	}
	if opts.Origins == "" && len(h.origins) > 0 {
		opts.Origins = strings.Join(h.origins, ",")
	}
	if opts.MonthsAhead == "" && h.monthsAhead > 0 {
		opts.MonthsAhead = strconv.Itoa(h.monthsAhead)
	}

	now := h.now()
	size := opts.Size(now)
	if size == 0 {
		return badRequest(c, "validation_error", "no prewarm jobs for the given origins, pax and months")
	}
	if size > MaxPrewarmJobs {
		return badRequest(c, "validation_error", "too many prewarm jobs: "+strconv.Itoa(size))
	}
	jobs := opts.Jobs(now)

	async, _ := strconv.ParseBool(c.QueryParam("async"))
	if async {
		if h.dispatcher == nil {
			return badRequest(c, "queue_disabled", "async prewarm needs the job queue to be enabled")
		}
		batchID := uuid.NewString()
		if err := h.dispatcher.Dispatch(c.Request().Context(), batchID, jobs); err != nil {
			slog.Error("prewarm dispatch failed", "batch_id", batchID, "error", err)
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "queue_unavailable",
				Message: "Failed to enqueue prewarm jobs",
				Code:    http.StatusBadGateway,
			})
		}
		return c.JSON(http.StatusAccepted, PrewarmAccepted{BatchID: batchID, Jobs: len(jobs)})
	}

	summary := h.runner.Run(c.Request().Context(), jobs)
	slog.Info("prewarm finished", "jobs", summary.TotalJobs, "ok", summary.OK, "fail", summary.Fail, "avg_ms", summary.AvgMs)
	return c.JSON(http.StatusOK, summary)
}
