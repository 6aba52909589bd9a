package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo persists events.  Events are written only by administrators
// and read by the public catalog.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, name, category, starts_at, location, base_price_cents, description, poster_ref, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*model.Event, error) {
	var e model.Event
	var poster sql.NullString
	if err := s.Scan(&e.ID, &e.Name, &e.Category, &e.StartsAt, &e.Location, &e.BasePriceCents,
		&e.Description, &poster, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if poster.Valid {
		p := poster.String
		e.PosterRef = &p
	}
	return &e, nil
}

// Create inserts a new event and populates its ID and timestamps.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, category, starts_at, location, base_price_cents, description, poster_ref)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Category, e.StartsAt.UTC(), e.Location, e.BasePriceCents,
		e.Description, e.PosterRef)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID returns the event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// EventFilter narrows the public catalog.  Zero fields are ignored.  Q and
// Location are substring matches, Category is exact (case-insensitive) and
// the price bounds are inclusive on base_price_cents.
type EventFilter struct {
	Q             string
	Category      string
	Location      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Limit         int
	Offset        int
}

// where renders the filter as a WHERE clause and its args.
func (f EventFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(f.Q); q != "" {
		conds = append(conds, `name LIKE ?`)
		args = append(args, "%"+escapeLike(q)+"%")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		conds = append(conds, `LOWER(category) = LOWER(?)`)
		args = append(args, c)
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		conds = append(conds, `location LIKE ?`)
		args = append(args, "%"+escapeLike(l)+"%")
	}
	if f.MinPriceCents != nil {
		conds = append(conds, `base_price_cents >= ?`)
		args = append(args, *f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		conds = append(conds, `base_price_cents <= ?`)
		args = append(args, *f.MaxPriceCents)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// List returns events matching f ordered by start time.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	where, args := f.where()
	q := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY starts_at ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Categories lists the distinct categories in use, alphabetically.
func (r *EventRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM events ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of an event.  ErrNotFound when the id
// does not exist.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET name = ?, category = ?, starts_at = ?, location = ?, base_price_cents = ?,
               description = ?, poster_ref = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, e.Name, e.Category, e.StartsAt.UTC(), e.Location, e.BasePriceCents,
		e.Description, e.PosterRef, e.ID); err != nil {
		return classify(err)
	}
	// RowsAffected is 0 for an unchanged row under MySQL, so re-read instead.
	updated, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *updated
	return nil
}

// Delete removes an event together with its seat classes and reviews.
// Events with purchases are protected by a RESTRICT foreign key and yield
// ErrConflict.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return requireAffected(res)
}
