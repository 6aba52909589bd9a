package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var seatClassCols = []string{"id", "event_id", "label", "unit_price_cents", "capacity", "remaining_quantity", "created_at", "updated_at"}

func TestClassify(t *testing.T) {
	cases := []struct {
		number uint16
		want   error
	}{
		{1205, ErrTransientConflict},
		{1213, ErrTransientConflict},
		{1062, ErrDuplicate},
		{1451, ErrConflict},
		{1452, ErrNotFound},
	}
	for _, tc := range cases {
		err := classify(&mysql.MySQLError{Number: tc.number, Message: "x"})
		assert.ErrorIs(t, err, tc.want, "number %d", tc.number)
		var me *mysql.MySQLError
		assert.True(t, errors.As(err, &me), "driver error stays in the chain")
	}
	plain := errors.New("io")
	assert.Equal(t, plain, classify(plain))
	assert.Nil(t, classify(nil))
	assert.True(t, IsTransient(classify(&mysql.MySQLError{Number: 1213})))
}

func TestSeatClassGetForUpdateTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSeatClassRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM seat_classes WHERE id = \? AND event_id = \? FOR UPDATE`).
		WithArgs(uint64(7), uint64(42)).
		WillReturnRows(sqlmock.NewRows(seatClassCols).AddRow(7, 42, "VIP", 5000, 10, 10, now, now))

	sc, err := repo.GetForUpdateTx(context.Background(), db, 42, 7)
	require.NoError(t, err)
	assert.Equal(t, "VIP", sc.Label)
	assert.EqualValues(t, 5000, sc.UnitPriceCents)
	assert.Equal(t, 10, sc.RemainingQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatClassGetForUpdateTxNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows(seatClassCols))

	_, err := NewSeatClassRepo(db).GetForUpdateTx(context.Background(), db, 42, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeatClassGetForUpdateTxLockTimeout(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

	_, err := NewSeatClassRepo(db).GetForUpdateTx(context.Background(), db, 42, 7)
	assert.ErrorIs(t, err, ErrTransientConflict)
}

func TestSeatClassDecrementTx(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE seat_classes SET remaining_quantity = remaining_quantity - \?`).
			WithArgs(3, uint64(7), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, NewSeatClassRepo(db).DecrementTx(context.Background(), db, 7, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("short", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE seat_classes`).WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewSeatClassRepo(db).DecrementTx(context.Background(), db, 7, 8)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
	t.Run("deadlock", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE seat_classes`).WillReturnError(&mysql.MySQLError{Number: 1213})
		err := NewSeatClassRepo(db).DecrementTx(context.Background(), db, 7, 1)
		assert.ErrorIs(t, err, ErrTransientConflict)
	})
}

func TestSeatClassCreateDuplicateLabel(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO seat_classes`).
		WithArgs(uint64(42), "VIP", int64(5000), 10, 10).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewSeatClassRepo(db).Create(context.Background(), &model.SeatClass{EventID: 42, Label: "VIP", UnitPriceCents: 5000, Capacity: 10})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSeatClassUpdateAppliesCapacityDelta(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(seatClassCols).AddRow(7, 42, "VIP", 5000, 10, 7, now, now))
	mock.ExpectExec(`UPDATE seat_classes SET label = \?, unit_price_cents = \?, capacity = \?, remaining_quantity = \?`).
		WithArgs("Gold", int64(6000), 12, 9, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sc, err := NewSeatClassRepo(db).Update(context.Background(), 42, 7, SeatClassPatch{Label: "Gold", UnitPriceCents: 6000, Capacity: 12})
	require.NoError(t, err)
	assert.Equal(t, 9, sc.RemainingQuantity)
	assert.Equal(t, 3, sc.Sold())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatClassUpdateRefusesCapacityBelowSold(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(seatClassCols).AddRow(7, 42, "VIP", 5000, 10, 7, now, now))
	mock.ExpectRollback()

	_, err := NewSeatClassRepo(db).Update(context.Background(), 42, 7, SeatClassPatch{Label: "VIP", UnitPriceCents: 5000, Capacity: 2})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatClassDeleteWithPurchases(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM seat_classes`).WillReturnError(&mysql.MySQLError{Number: 1451})
	assert.ErrorIs(t, NewSeatClassRepo(db).Delete(context.Background(), 42, 7), ErrConflict)
}

func TestPurchaseCreateTx(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &model.Purchase{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3, UnitPriceCents: 5000,
		TotalPriceCents: 15000, VerificationCode: "TICKET-abc", PurchasedAt: at}

	mock.ExpectExec(`INSERT INTO purchases`).
		WithArgs("u1", uint64(42), uint64(7), 3, int64(5000), int64(15000), "TICKET-abc", at).
		WillReturnResult(sqlmock.NewResult(11, 1))

	require.NoError(t, NewPurchaseRepo(db).CreateTx(context.Background(), db, p))
	assert.EqualValues(t, 11, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseCreateTxDuplicateCode(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO purchases`).WillReturnError(&mysql.MySQLError{Number: 1062})
	err := NewPurchaseRepo(db).CreateTx(context.Background(), db, &model.Purchase{})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPurchaseGetByCode(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "buyer_id", "event_id", "seat_class_id", "quantity", "unit_price_cents", "total_price_cents",
		"verification_code", "purchased_at", "name", "starts_at", "location", "label"}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.verification_code = ?`)).
		WithArgs("TICKET-abc").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(11, "u1", 42, 7, 3, 5000, 15000, "TICKET-abc", at, "Gala", at, "Hall A", "VIP"))
	ps, err := NewPurchaseRepo(db).GetByCode(context.Background(), "TICKET-abc")
	require.NoError(t, err)
	assert.Equal(t, "Gala", ps.EventName)
	assert.Equal(t, "VIP", ps.SeatClassLabel)
	assert.EqualValues(t, 15000, ps.TotalPriceCents)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.verification_code = ?`)).WillReturnRows(sqlmock.NewRows(cols))
	_, err = NewPurchaseRepo(db).GetByCode(context.Background(), "TICKET-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurchaseHasPurchased(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT 1 FROM purchases`).WithArgs("u1", uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM purchases`).WithArgs("u2", uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewPurchaseRepo(db)
	ok, err := repo.HasPurchased(context.Background(), "u1", 42)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.HasPurchased(context.Background(), "u2", 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInquiryListFilters(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "name", "email", "subject", "message", "event_id", "status", "admin_notes", "created_at"}
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = ? AND (email LIKE ? OR subject LIKE ? OR name LIKE ?)`)).
		WithArgs("PENDING", `%50\%%`, `%50\%%`, `%50\%%`, 20, 0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, nil, "a@b.c", "50% off?", "hi", 42, "PENDING", nil, now))

	list, err := NewInquiryRepo(db).List(context.Background(), InquiryFilter{Status: "PENDING", Query: "50%", Limit: 20})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Name)
	require.NotNil(t, list[0].EventID)
	assert.EqualValues(t, 42, *list[0].EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO reviews`).WillReturnError(&mysql.MySQLError{Number: 1062})
	err := NewReviewRepo(db).Create(context.Background(), &model.Review{EventID: 42, BuyerID: "u1", Rating: 5})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestReviewSummaryEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\), AVG\(rating\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(0, nil))
	n, avg, err := NewReviewRepo(db).Summary(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0.0, avg)
}

var eventCols = []string{"id", "name", "category", "starts_at", "location", "base_price_cents", "description", "poster_ref", "created_at", "updated_at"}

func TestEventListFilters(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	lo, hi := int64(1000), int64(9000)

	want := `SELECT ` + eventColumns + ` FROM events WHERE name LIKE ? AND LOWER(category) = LOWER(?)` +
		` AND location LIKE ? AND base_price_cents >= ? AND base_price_cents <= ?` +
		` ORDER BY starts_at ASC, id ASC LIMIT ? OFFSET ?`
	mock.ExpectQuery(regexp.QuoteMeta(want)).
		WithArgs(`%50\%\_off%`, "music", "%Paris%", lo, hi, 20, 40).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(1, "50%_off Gala", "music", now, "Paris", 5000, "", nil, now, now))

	got, err := NewEventRepo(db).List(context.Background(), EventFilter{
		Q: " 50%_off ", Category: "music", Location: "Paris", MinPriceCents: &lo, MaxPriceCents: &hi, Limit: 20, Offset: 40,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "50%_off Gala", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventListNoFilters(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM events ORDER BY starts_at ASC, id ASC LIMIT ? OFFSET ?`)).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(eventCols))

	got, err := NewEventRepo(db).List(context.Background(), EventFilter{Category: "  ", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCategories(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT DISTINCT category FROM events`).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("music").AddRow("theatre"))

	got, err := NewEventRepo(db).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"music", "theatre"}, got)
}

func TestDeleteSurfacesRowsAffectedError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("rows affected unavailable")
	mock.ExpectExec(`DELETE FROM seat_classes`).WillReturnResult(sqlmock.NewErrorResult(boom))
	mock.ExpectExec(`DELETE FROM seat_classes`).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSeatClassRepo(db)
	err := repo.Delete(context.Background(), 42, 7)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), 42, 7), ErrNotFound)
}

func TestReportTopEventsCarriesCategory(t *testing.T) {
	db, mock := newMock(t)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT p.event_id, e.name, e.category`).
		WithArgs(from, from.AddDate(0, 1, 0), 10).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "name", "category", "revenue", "tickets"}).
			AddRow(42, "Gala", "music", 30000, 6))

	got, err := NewReportRepo(db).TopEvents(context.Background(), from, from.AddDate(0, 1, 0), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "music", got[0].Category)
	assert.EqualValues(t, 30000, got[0].RevenueCents)
}
