package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// SeatClassRepo is the seat inventory store.  The purchase path only uses
// the *Tx methods, which run inside the caller's transaction; the remaining
// reads serve the catalog and are never used to decide sufficiency.
type SeatClassRepo struct {
	db *sql.DB
	tx database.Transactor
}

// NewSeatClassRepo returns a SeatClassRepo bound to db.
func NewSeatClassRepo(db *sql.DB) *SeatClassRepo {
	return &SeatClassRepo{db: db, tx: database.NewTransactor(db)}
}

const seatClassColumns = `id, event_id, label, unit_price_cents, capacity, remaining_quantity, created_at, updated_at`

func scanSeatClass(s rowScanner) (*model.SeatClass, error) {
	var sc model.SeatClass
	if err := s.Scan(&sc.ID, &sc.EventID, &sc.Label, &sc.UnitPriceCents, &sc.Capacity,
		&sc.RemainingQuantity, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	return &sc, nil
}

// GetForUpdateTx reads the seat class and takes an exclusive row lock held
// until the transaction ends.  Concurrent purchases of the same class queue
// here.  The event id is part of the predicate so a seat class of another
// event reads as ErrNotFound.
func (r *SeatClassRepo) GetForUpdateTx(ctx context.Context, tx database.DBTX, eventID, seatClassID uint64) (*model.SeatClass, error) {
	q := `SELECT ` + seatClassColumns + ` FROM seat_classes WHERE id = ? AND event_id = ? FOR UPDATE`
	sc, err := scanSeatClass(tx.QueryRowContext(ctx, q, seatClassID, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return sc, nil
}

// DecrementTx subtracts amount from remaining_quantity.  The guard in the
// WHERE clause makes the statement a no-op when stock is short, in which
// case ErrInsufficientStock is returned.
func (r *SeatClassRepo) DecrementTx(ctx context.Context, tx database.DBTX, seatClassID uint64, amount int) error {
	const q = `UPDATE seat_classes SET remaining_quantity = remaining_quantity - ?
               WHERE id = ? AND remaining_quantity >= ?`
	res, err := tx.ExecContext(ctx, q, amount, seatClassID, amount)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// GetByEventAndID is a plain committed read for display.
func (r *SeatClassRepo) GetByEventAndID(ctx context.Context, eventID, seatClassID uint64) (*model.SeatClass, error) {
	q := `SELECT ` + seatClassColumns + ` FROM seat_classes WHERE id = ? AND event_id = ?`
	sc, err := scanSeatClass(r.db.QueryRowContext(ctx, q, seatClassID, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sc, err
}

// ListByEvent returns an event's seat classes ordered by price.
func (r *SeatClassRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.SeatClass, error) {
	q := `SELECT ` + seatClassColumns + ` FROM seat_classes WHERE event_id = ? ORDER BY unit_price_cents ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SeatClass{}
	for rows.Next() {
		sc, err := scanSeatClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

// Create inserts a seat class with remaining_quantity = capacity.  The
// unique (event_id, label) index is the duplicate signal; a missing event
// surfaces as ErrNotFound through the foreign key.
func (r *SeatClassRepo) Create(ctx context.Context, sc *model.SeatClass) error {
	const q = `INSERT INTO seat_classes (event_id, label, unit_price_cents, capacity, remaining_quantity)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, sc.EventID, sc.Label, sc.UnitPriceCents, sc.Capacity, sc.Capacity)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByEventAndID(ctx, sc.EventID, uint64(id))
	if err != nil {
		return err
	}
	*sc = *created
	return nil
}

// SeatClassPatch carries the admin-editable fields of a seat class.
type SeatClassPatch struct {
	Label          string
	UnitPriceCents int64
	Capacity       int
}

// Update changes label, price and capacity under the same row lock the
// purchase path takes, so an edit never interleaves with a sale.  A
// capacity change moves remaining_quantity by the same delta; shrinking
// below the seats already sold returns ErrConflict.
func (r *SeatClassRepo) Update(ctx context.Context, eventID, seatClassID uint64, p SeatClassPatch) (*model.SeatClass, error) {
	var out *model.SeatClass
	err := r.tx.InTx(ctx, func(tx database.DBTX) error {
		cur, err := r.GetForUpdateTx(ctx, tx, eventID, seatClassID)
		if err != nil {
			return err
		}
		if p.Capacity < cur.Sold() {
			return ErrConflict
		}
		remaining := cur.RemainingQuantity + (p.Capacity - cur.Capacity)
		const q = `UPDATE seat_classes SET label = ?, unit_price_cents = ?, capacity = ?, remaining_quantity = ?
                   WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, p.Label, p.UnitPriceCents, p.Capacity, remaining, seatClassID); err != nil {
			return classify(err)
		}
		cur.Label, cur.UnitPriceCents, cur.Capacity, cur.RemainingQuantity = p.Label, p.UnitPriceCents, p.Capacity, remaining
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a seat class.  Classes with purchases are protected by a
// RESTRICT foreign key and yield ErrConflict.
func (r *SeatClassRepo) Delete(ctx context.Context, eventID, seatClassID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_classes WHERE id = ? AND event_id = ?`, seatClassID, eventID)
	if err != nil {
		return classify(err)
	}
	return requireAffected(res)
}
