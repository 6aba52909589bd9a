package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func vipClass(remaining int) model.SeatClass {
	return model.SeatClass{ID: 7, EventID: 42, Label: "VIP", UnitPriceCents: 5000, Capacity: 10, RemainingQuantity: remaining}
}

func newTestCoordinator(s *memStore, attempts int) *Coordinator {
	return NewCoordinator(s, s, s, NewTicketFactory(func() time.Time { return fixedNow }),
		CoordinatorOptions{MaxAttempts: attempts, RetryBackoff: time.Millisecond})
}

func TestPurchaseScenario(t *testing.T) {
	s := newMemStore(vipClass(10))
	c := newTestCoordinator(s, 3)
	ctx := context.Background()

	p, err := c.Purchase(ctx, PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 15000, p.TotalPriceCents)
	assert.EqualValues(t, 5000, p.UnitPriceCents)
	assert.Equal(t, "u1", p.BuyerID)
	assert.True(t, strings.HasPrefix(p.VerificationCode, model.TicketCodePrefix))
	assert.Equal(t, fixedNow, p.PurchasedAt)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 7, s.class(7).RemainingQuantity)

	_, err = c.Purchase(ctx, PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 8})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 7, s.class(7).RemainingQuantity)

	view, err := NewVerifier(s).Resolve(ctx, p.VerificationCode, DetailFull)
	require.NoError(t, err)
	assert.Equal(t, "u1", view.BuyerID)
	assert.EqualValues(t, 42, view.EventID)
	assert.Equal(t, "VIP", view.SeatClassLabel)
	assert.Equal(t, 3, view.Quantity)
	assert.EqualValues(t, 15000, view.TotalPriceCents)
}

func TestPurchaseRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, MaxPurchaseQuantity + 1} {
		t.Run(fmt.Sprint(qty), func(t *testing.T) {
			s := newMemStore(vipClass(10))
			_, err := newTestCoordinator(s, 3).Purchase(context.Background(),
				PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: qty})
			assert.ErrorIs(t, err, ErrInvalidQuantity)
			assert.Equal(t, 10, s.class(7).RemainingQuantity)
			assert.Zero(t, s.txCount, "no transaction is opened")
		})
	}
}

func TestPurchaseNotFound(t *testing.T) {
	s := newMemStore(vipClass(10))
	c := newTestCoordinator(s, 3)

	_, err := c.Purchase(context.Background(), PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 99, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	// seat class exists but belongs to another event
	_, err = c.Purchase(context.Background(), PurchaseRequest{BuyerID: "u1", EventID: 43, SeatClassID: 7, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 10, s.class(7).RemainingQuantity)
}

func TestPurchaseNoOversellUnderConcurrency(t *testing.T) {
	sc := vipClass(5)
	sc.Capacity = 5
	s := newMemStore(sc)
	c := newTestCoordinator(s, 3)

	const buyers = 10
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
		other        []error
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := c.Purchase(context.Background(), PurchaseRequest{BuyerID: fmt.Sprintf("u%d", i), EventID: 42, SeatClassID: 7, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, rejected)
	got := s.class(7)
	assert.Equal(t, 0, got.RemainingQuantity)
	assert.Equal(t, got.Capacity, got.RemainingQuantity+s.sold(7))
}

func TestPurchaseRetriesTransientConflict(t *testing.T) {
	s := newMemStore(vipClass(10))
	lockWait := fmt.Errorf("%w: %w", repository.ErrTransientConflict, &mysql.MySQLError{Number: 1205})
	s.createErrs = []error{lockWait, repository.ErrDuplicate}

	p, err := newTestCoordinator(s, 3).Purchase(context.Background(),
		PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, s.txCount)
	assert.Equal(t, 8, s.class(7).RemainingQuantity, "failed attempts roll back their decrement")
	assert.Equal(t, 2, s.sold(7))
	assert.NotEmpty(t, p.VerificationCode)
}

func TestPurchaseTransientExhaustion(t *testing.T) {
	s := newMemStore(vipClass(10))
	s.createErrs = []error{repository.ErrTransientConflict, repository.ErrTransientConflict}

	_, err := newTestCoordinator(s, 2).Purchase(context.Background(),
		PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 2})
	assert.ErrorIs(t, err, ErrTransientConflict)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 2, s.txCount)
	assert.Equal(t, 10, s.class(7).RemainingQuantity)
}

func TestPurchasePersistenceFailureIsNotRetried(t *testing.T) {
	s := newMemStore(vipClass(10))
	boom := errors.New("connection refused")
	s.createErrs = []error{boom}

	_, err := newTestCoordinator(s, 3).Purchase(context.Background(),
		PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 2})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.txCount)
	assert.Equal(t, 10, s.class(7).RemainingQuantity)
	assert.Empty(t, s.purchases)
}

func TestPurchasePublishesAfterCommit(t *testing.T) {
	s := newMemStore(vipClass(10))
	pub := &fakePublisher{events: make(chan queue.PurchaseCommittedEvent, 1), err: errors.New("broker down")}
	c := newTestCoordinator(s, 3).WithPublisher(pub)

	p, err := c.Purchase(context.Background(), PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3})
	require.NoError(t, err, "publish failure does not fail the purchase")

	select {
	case ev := <-pub.events:
		assert.Equal(t, p.ID, ev.PurchaseID)
		assert.Equal(t, p.VerificationCode, ev.VerificationCode)
		assert.EqualValues(t, 15000, ev.TotalPriceCents)
		assert.Equal(t, "2026-03-01T12:00:00Z", ev.PurchasedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("no purchase.committed event")
	}
}

func TestPurchaseCancelledDuringBackoff(t *testing.T) {
	s := newMemStore(vipClass(10))
	s.createErrs = []error{repository.ErrTransientConflict}
	c := NewCoordinator(s, s, s, NewTicketFactory(nil), CoordinatorOptions{MaxAttempts: 3, RetryBackoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Purchase(ctx, PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 1})
	assert.ErrorIs(t, err, ErrTransientConflict)
	assert.Equal(t, 1, s.txCount)
}
