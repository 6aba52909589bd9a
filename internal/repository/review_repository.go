package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ReviewRepo persists event reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review.  A second review by the same buyer for the same
// event hits the unique index and returns ErrDuplicate.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `INSERT INTO reviews (event_id, buyer_id, rating, comment) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rv.EventID, rv.BuyerID, rv.Rating, rv.Comment)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM reviews WHERE id = ?`, rv.ID).Scan(&rv.CreatedAt)
}

// ListByEvent returns reviews newest first.
func (r *ReviewRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Review, error) {
	const q = `SELECT id, event_id, buyer_id, rating, comment, created_at FROM reviews
               WHERE event_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.EventID, &rv.BuyerID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Summary returns the review count and average rating for an event.  An
// event without reviews reports 0 and 0.
func (r *ReviewRepo) Summary(ctx context.Context, eventID uint64) (int, float64, error) {
	var (
		n   int
		avg sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(rating) FROM reviews WHERE event_id = ?`, eventID).Scan(&n, &avg)
	if err != nil {
		return 0, 0, err
	}
	return n, avg.Float64, nil
}

// Delete removes a review (moderation).
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
