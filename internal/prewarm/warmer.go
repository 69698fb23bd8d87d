package prewarm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/internal/ratelimit"
)

const DefaultConcurrency = 2

type MonthAggregator interface {
	AggregateMonth(ctx context.Context, q models.CalendarQuery) (*models.CalendarMonthPayload, error)
}

// Dispatcher hands a batch of jobs to background workers.
type Dispatcher interface {
	Dispatch(ctx context.Context, batchID string, jobs []Job) error
}

type JobResult struct {
	Job
	OK         bool   `json:"ok"`
	Ms         int64  `json:"ms"`
	FailedDays int    `json:"failed_days,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Summary struct {
	TotalJobs int         `json:"total_jobs"`
	OK        int         `json:"ok"`
	Fail      int         `json:"fail"`
	AvgMs     int64       `json:"avg_ms"`
	Results   []JobResult `json:"results"`
}

type Warmer struct {
	calendar MonthAggregator
	gate     *ratelimit.Gate
	now      func() time.Time
}

func NewWarmer(calendar MonthAggregator, concurrency int) *Warmer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Warmer{
		calendar: calendar,
		gate:     ratelimit.NewGate(concurrency),
		now:      time.Now,
	}
}

// Run recomputes every job's month, bypassing cache reads, and reports one
// result per job in job order. A failing job never stops the others.
func (w *Warmer) Run(ctx context.Context, jobs []Job) Summary {
	results := make([]JobResult, len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		results[i] = JobResult{Job: job}
		if err := w.gate.Acquire(ctx); err != nil {
			for j := i; j < len(jobs); j++ {
				results[j] = JobResult{Job: jobs[j], Error: err.Error()}
			}
			break
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer w.gate.Release()
			results[i] = w.runJob(ctx, job)
		}(i, job)
	}
	wg.Wait()

	return summarize(results)
}

func (w *Warmer) runJob(ctx context.Context, job Job) JobResult {
	start := w.now()
	payload, err := w.calendar.AggregateMonth(ctx, job.Query())
	r := JobResult{Job: job, Ms: w.now().Sub(start).Milliseconds()}
	if err != nil {
		slog.Warn("prewarm job failed",
			"origin", job.Origin, "pax", job.Pax, "year", job.Year, "month", job.Month, "error", err)
		r.Error = err.Error()
		return r
	}

	r.OK = true
	if payload.Diag != nil {
		r.FailedDays = payload.Diag.DaysFailed
	}
	return r
}

func summarize(results []JobResult) Summary {
	s := Summary{TotalJobs: len(results), Results: results}
	var totalMs int64
	for _, r := range results {
		if r.OK {
			s.OK++
		} else {
			s.Fail++
		}
		totalMs += r.Ms
	}
	if len(results) > 0 {
		s.AvgMs = (totalMs + int64(len(results))/2) / int64(len(results))
	}
	return s
}
