package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ReportStore runs the raw aggregations.
type ReportStore interface {
	Totals(ctx context.Context, from, to time.Time) (model.SalesTotals, error)
	Monthly(ctx context.Context, from, to time.Time) ([]model.PeriodSales, error)
	Yearly(ctx context.Context, from, to time.Time) ([]model.PeriodSales, error)
	TopEvents(ctx context.Context, from, to time.Time, limit int) ([]model.TopEvent, error)
	TopBuyers(ctx context.Context, from, to time.Time, limit int) ([]model.TopBuyer, error)
}

// ErrInvalidRange is returned when from is after to or the window spans
// more than MaxReportYears.
var ErrInvalidRange = errors.New("invalid date range")

const (
	topN = 10

	// MaxReportYears bounds a report window and with it the zero-filled
	// monthly series.
	MaxReportYears = 10
)

// ReportService builds the admin sales report.
type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(store ReportStore, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{store: store, now: now}
}

// Window normalizes a requested range to whole UTC days.  Zero values
// default to the last 30 days ending today.  The returned end is exclusive
// (midnight after the last included day).
func (s *ReportService) Window(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -29)
	}
	from = truncateDay(from)
	to = truncateDay(to)
	if from.After(to) || to.After(from.AddDate(MaxReportYears, 0, 0)) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to.AddDate(0, 0, 1), nil
}

// Build runs the aggregations concurrently and fills missing months with
// zero rows so the series is continuous.
func (s *ReportService) Build(ctx context.Context, from, to time.Time) (*model.SalesReport, error) {
	start, end, err := s.Window(from, to)
	if err != nil {
		return nil, err
	}
	rep := &model.SalesReport{From: start, To: end.AddDate(0, 0, -1)}

	g, gctx := errgroup.WithContext(ctx)
	var monthly []model.PeriodSales
	g.Go(func() (err error) { rep.Totals, err = s.store.Totals(gctx, start, end); return })
	g.Go(func() (err error) { monthly, err = s.store.Monthly(gctx, start, end); return })
	g.Go(func() (err error) { rep.Yearly, err = s.store.Yearly(gctx, start, end); return })
	g.Go(func() (err error) { rep.TopEvents, err = s.store.TopEvents(gctx, start, end, topN); return })
	g.Go(func() (err error) { rep.TopBuyers, err = s.store.TopBuyers(gctx, start, end, topN); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep.Monthly = FillMonths(start, end, monthly)
	return rep, nil
}

// FillMonths returns one bucket per calendar month touched by [start, end),
// taking values from rows and zero elsewhere.
func FillMonths(start, end time.Time, rows []model.PeriodSales) []model.PeriodSales {
	byPeriod := make(map[string]model.PeriodSales, len(rows))
	for _, r := range rows {
		byPeriod[r.Period] = r
	}
	out := []model.PeriodSales{}
	last := end.Add(-time.Nanosecond)
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		if r, ok := byPeriod[key]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, model.PeriodSales{Period: key})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
