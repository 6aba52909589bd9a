package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ReportRepo runs the sales aggregations behind the admin dashboard.  All
// windows are half-open: from <= purchased_at < to.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Totals sums revenue, tickets, purchases and distinct buyers.
func (r *ReportRepo) Totals(ctx context.Context, from, to time.Time) (model.SalesTotals, error) {
	const q = `SELECT COALESCE(SUM(total_price_cents), 0), COALESCE(SUM(quantity), 0), COUNT(*), COUNT(DISTINCT buyer_id)
                 FROM purchases WHERE purchased_at >= ? AND purchased_at < ?`
	var t model.SalesTotals
	err := r.db.QueryRowContext(ctx, q, from.UTC(), to.UTC()).Scan(&t.RevenueCents, &t.TicketsSold, &t.PurchaseCount, &t.DistinctBuyers)
	return t, err
}

// Monthly groups by calendar month.  Months without sales are absent; the
// service fills the gaps.
func (r *ReportRepo) Monthly(ctx context.Context, from, to time.Time) ([]model.PeriodSales, error) {
	const q = `SELECT DATE_FORMAT(purchased_at, '%Y-%m') AS period, SUM(total_price_cents), SUM(quantity)
                 FROM purchases WHERE purchased_at >= ? AND purchased_at < ?
                GROUP BY period ORDER BY period`
	return r.periods(ctx, q, from, to)
}

// Yearly groups by calendar year.
func (r *ReportRepo) Yearly(ctx context.Context, from, to time.Time) ([]model.PeriodSales, error) {
	const q = `SELECT DATE_FORMAT(purchased_at, '%Y') AS period, SUM(total_price_cents), SUM(quantity)
                 FROM purchases WHERE purchased_at >= ? AND purchased_at < ?
                GROUP BY period ORDER BY period`
	return r.periods(ctx, q, from, to)
}

func (r *ReportRepo) periods(ctx context.Context, q string, from, to time.Time) ([]model.PeriodSales, error) {
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PeriodSales{}
	for rows.Next() {
		var p model.PeriodSales
		if err := rows.Scan(&p.Period, &p.RevenueCents, &p.TicketsSold); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopEvents ranks events by revenue.
func (r *ReportRepo) TopEvents(ctx context.Context, from, to time.Time, limit int) ([]model.TopEvent, error) {
	const q = `SELECT p.event_id, e.name, e.category, SUM(p.total_price_cents) AS revenue, SUM(p.quantity)
                 FROM purchases p JOIN events e ON e.id = p.event_id
                WHERE p.purchased_at >= ? AND p.purchased_at < ?
                GROUP BY p.event_id, e.name, e.category ORDER BY revenue DESC, p.event_id ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TopEvent{}
	for rows.Next() {
		var t model.TopEvent
		if err := rows.Scan(&t.EventID, &t.EventName, &t.Category, &t.RevenueCents, &t.TicketsSold); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TopBuyers ranks buyers by revenue.
func (r *ReportRepo) TopBuyers(ctx context.Context, from, to time.Time, limit int) ([]model.TopBuyer, error) {
	const q = `SELECT buyer_id, SUM(total_price_cents) AS revenue, SUM(quantity), COUNT(*)
                 FROM purchases WHERE purchased_at >= ? AND purchased_at < ?
                GROUP BY buyer_id ORDER BY revenue DESC, buyer_id ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TopBuyer{}
	for rows.Next() {
		var t model.TopBuyer
		if err := rows.Scan(&t.BuyerID, &t.RevenueCents, &t.TicketsSold, &t.PurchaseCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
