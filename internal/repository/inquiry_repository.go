package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// InquiryRepo persists contact-form inquiries.
type InquiryRepo struct {
	db *sql.DB
}

func NewInquiryRepo(db *sql.DB) *InquiryRepo { return &InquiryRepo{db: db} }

const inquiryColumns = `id, name, email, subject, message, event_id, status, admin_notes, created_at`

func scanInquiry(s rowScanner) (*model.Inquiry, error) {
	var (
		in      model.Inquiry
		name    sql.NullString
		eventID sql.NullInt64
		notes   sql.NullString
	)
	if err := s.Scan(&in.ID, &name, &in.Email, &in.Subject, &in.Message, &eventID, &in.Status, &notes, &in.CreatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		in.Name = &name.String
	}
	if eventID.Valid {
		id := uint64(eventID.Int64)
		in.EventID = &id
	}
	if notes.Valid {
		in.AdminNotes = &notes.String
	}
	return &in, nil
}

// Create stores a new PENDING inquiry.  A reference to an unknown event
// surfaces as ErrNotFound.
func (r *InquiryRepo) Create(ctx context.Context, in *model.Inquiry) error {
	const q = `INSERT INTO inquiries (name, email, subject, message, event_id, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, in.Name, in.Email, in.Subject, in.Message, in.EventID, model.InquiryPending)
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
	*in = *created
	return nil
}

// GetByID returns one inquiry or ErrNotFound.
func (r *InquiryRepo) GetByID(ctx context.Context, id uint64) (*model.Inquiry, error) {
	in, err := scanInquiry(r.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return in, err
}

// InquiryFilter narrows the admin inquiry list.  Empty fields are ignored.
type InquiryFilter struct {
	Status string // PENDING or REPLIED
	Query  string // substring of email, subject or name
	Limit  int
	Offset int
}

// List returns inquiries with pending ones first, newest first within each status.
func (r *InquiryRepo) List(ctx context.Context, f InquiryFilter) ([]model.Inquiry, error) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	sb.WriteString(`SELECT ` + inquiryColumns + ` FROM inquiries`)
	if f.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, f.Status)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + escapeLike(q) + "%"
		where = append(where, `(email LIKE ? OR subject LIKE ? OR name LIKE ?)`)
		args = append(args, like, like, like)
	}
	if len(where) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(where, ` AND `))
	}
	sb.WriteString(` ORDER BY (status = 'PENDING') DESC, created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Inquiry{}
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// SetStatus marks an inquiry replied or pending and optionally replaces the admin notes.
func (r *InquiryRepo) SetStatus(ctx context.Context, id uint64, status string, notes *string) error {
	const q = `UPDATE inquiries SET status = ?, admin_notes = COALESCE(?, admin_notes) WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, status, notes, id); err != nil {
		return err
	}
	// MySQL reports 0 affected rows for a no-op update, so check existence explicitly.
	_, err := r.GetByID(ctx, id)
	return err
}

// Delete removes an inquiry.
func (r *InquiryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
