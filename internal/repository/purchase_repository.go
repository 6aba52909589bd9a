package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// PurchaseRepo persists purchases.  Rows are inserted once inside the
// purchase transaction and never updated.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo returns a new PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// CreateTx inserts p within the caller's transaction and sets p.ID.  A
// collision on verification_code surfaces as ErrDuplicate.
func (r *PurchaseRepo) CreateTx(ctx context.Context, tx database.DBTX, p *model.Purchase) error {
	const q = `INSERT INTO purchases (buyer_id, event_id, seat_class_id, quantity, unit_price_cents,
               total_price_cents, verification_code, purchased_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.BuyerID, p.EventID, p.SeatClassID, p.Quantity, p.UnitPriceCents,
		p.TotalPriceCents, p.VerificationCode, p.PurchasedAt.UTC())
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

const summarySelect = `SELECT p.id, p.buyer_id, p.event_id, p.seat_class_id, p.quantity, p.unit_price_cents,
       p.total_price_cents, p.verification_code, p.purchased_at,
       e.name, e.starts_at, e.location, sc.label
  FROM purchases p
  JOIN events e ON e.id = p.event_id
  JOIN seat_classes sc ON sc.id = p.seat_class_id`

func scanSummary(s rowScanner) (*model.PurchaseSummary, error) {
	var ps model.PurchaseSummary
	if err := s.Scan(&ps.ID, &ps.BuyerID, &ps.EventID, &ps.SeatClassID, &ps.Quantity, &ps.UnitPriceCents,
		&ps.TotalPriceCents, &ps.VerificationCode, &ps.PurchasedAt,
		&ps.EventName, &ps.EventStartsAt, &ps.EventLocation, &ps.SeatClassLabel); err != nil {
		return nil, err
	}
	return &ps, nil
}

// GetByCode resolves a verification code.  The match is exact.
func (r *PurchaseRepo) GetByCode(ctx context.Context, code string) (*model.PurchaseSummary, error) {
	ps, err := scanSummary(r.db.QueryRowContext(ctx, summarySelect+` WHERE p.verification_code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ps, err
}

// GetForBuyer returns one purchase owned by buyerID.  A purchase owned by
// someone else reads as ErrNotFound so ids are not disclosed.
func (r *PurchaseRepo) GetForBuyer(ctx context.Context, buyerID string, id uint64) (*model.PurchaseSummary, error) {
	ps, err := scanSummary(r.db.QueryRowContext(ctx, summarySelect+` WHERE p.id = ? AND p.buyer_id = ?`, id, buyerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ps, err
}

// ListByBuyer returns a buyer's purchases, newest first.
func (r *PurchaseRepo) ListByBuyer(ctx context.Context, buyerID string) ([]model.PurchaseSummary, error) {
	rows, err := r.db.QueryContext(ctx, summarySelect+` WHERE p.buyer_id = ? ORDER BY p.purchased_at DESC, p.id DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PurchaseSummary{}
	for rows.Next() {
		ps, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ps)
	}
	return out, rows.Err()
}

// HasPurchased reports whether buyerID holds at least one purchase for the event.
func (r *PurchaseRepo) HasPurchased(ctx context.Context, buyerID string, eventID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM purchases WHERE buyer_id = ? AND event_id = ? LIMIT 1`, buyerID, eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
