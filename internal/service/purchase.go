package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/logging"
	"github.com/iliyamo/event-ticketing/internal/metrics"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// MaxPurchaseQuantity caps the seats a single purchase may take.
const MaxPurchaseQuantity = 100

// SeatClassStore is the inventory half of the purchase transaction.
type SeatClassStore interface {
	GetForUpdateTx(ctx context.Context, tx database.DBTX, eventID, seatClassID uint64) (*model.SeatClass, error)
	DecrementTx(ctx context.Context, tx database.DBTX, seatClassID uint64, amount int) error
}

// PurchaseStore persists minted purchases inside the same transaction.
type PurchaseStore interface {
	CreateTx(ctx context.Context, tx database.DBTX, p *model.Purchase) error
}

// EventPublisher announces committed purchases.  Delivery is best effort.
type EventPublisher interface {
	PublishPurchaseCommitted(ctx context.Context, ev queue.PurchaseCommittedEvent) error
}

// PurchaseRequest names who buys how many seats of which class.  BuyerID is
// taken verbatim from the identity provider.
type PurchaseRequest struct {
	BuyerID     string
	EventID     uint64
	SeatClassID uint64
	Quantity    int
}

// CoordinatorOptions tunes the retry loop.
type CoordinatorOptions struct {
	MaxAttempts  int           // total attempts on transient conflicts, >= 1
	RetryBackoff time.Duration // attempt n waits n*RetryBackoff before running again
}

// Coordinator commits purchases against seat inventory.  The sufficiency
// check and the decrement run under the seat class row lock inside one
// transaction, so concurrent buyers on any number of instances never
// oversell a class.
type Coordinator struct {
	tx        database.Transactor
	seats     SeatClassStore
	purchases PurchaseStore
	tickets   *TicketFactory
	opts      CoordinatorOptions

	publisher EventPublisher     // optional
	metrics   *metrics.Purchases // optional
}

func NewCoordinator(tx database.Transactor, seats SeatClassStore, purchases PurchaseStore, tickets *TicketFactory, opts CoordinatorOptions) *Coordinator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Coordinator{tx: tx, seats: seats, purchases: purchases, tickets: tickets, opts: opts}
}

// WithPublisher sets the purchase.committed publisher.
func (c *Coordinator) WithPublisher(p EventPublisher) *Coordinator { c.publisher = p; return c }

// WithMetrics sets the Prometheus instruments.
func (c *Coordinator) WithMetrics(m *metrics.Purchases) *Coordinator { c.metrics = m; return c }

// Purchase validates req and commits it.  Outcomes: the committed purchase,
// ErrInvalidQuantity, ErrNotFound, ErrInsufficientStock,
// ErrTransientConflict once retries are exhausted, or an error wrapping
// ErrPersistence.  Nothing is visible in storage unless the purchase is
// returned.
func (c *Coordinator) Purchase(ctx context.Context, req PurchaseRequest) (*model.Purchase, error) {
	start := time.Now()
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"buyer_id":      req.BuyerID,
		"event_id":      req.EventID,
		"seat_class_id": req.SeatClassID,
		"quantity":      req.Quantity,
	})

	if req.Quantity < 1 || req.Quantity > MaxPurchaseQuantity {
		c.observe(metrics.OutcomeInvalid, req.Quantity, start)
		return nil, ErrInvalidQuantity
	}

	var (
		p   *model.Purchase
		err error
	)
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		p, err = c.attempt(ctx, req)
		if err == nil || !isRetryable(err) {
			break
		}
		if attempt == c.opts.MaxAttempts {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("purchase conflict, retrying")
		if c.metrics != nil {
			c.metrics.Retry()
		}
		if !wait(ctx, time.Duration(attempt)*c.opts.RetryBackoff) {
			err = fmt.Errorf("%w: %w", ErrTransientConflict, ctx.Err())
			break
		}
	}

	if err != nil {
		outcome, out := c.outcome(err)
		c.observe(outcome, req.Quantity, start)
		entry := log.WithField("outcome", outcome)
		if outcome == metrics.OutcomeError {
			entry.WithError(err).Error("purchase failed")
		} else {
			entry.WithError(err).Info("purchase rejected")
		}
		return nil, out
	}

	c.observe(metrics.OutcomeCommitted, req.Quantity, start)
	log.WithFields(logrus.Fields{
		"outcome":           metrics.OutcomeCommitted,
		"purchase_id":       p.ID,
		"total_price_cents": p.TotalPriceCents,
	}).Info("purchase committed")
	c.publish(ctx, log, p)
	return p, nil
}

// attempt is one transaction.  The price is read from the locked row, so
// an admin price edit either commits before the lock is granted (and this
// purchase pays the new price) or waits until this purchase commits.
func (c *Coordinator) attempt(ctx context.Context, req PurchaseRequest) (*model.Purchase, error) {
	var out model.Purchase
	err := c.tx.InTx(ctx, func(tx database.DBTX) error {
		sc, err := c.seats.GetForUpdateTx(ctx, tx, req.EventID, req.SeatClassID)
		if err != nil {
			return err
		}
		if sc.RemainingQuantity < req.Quantity {
			return ErrInsufficientStock
		}
		if err := c.seats.DecrementTx(ctx, tx, sc.ID, req.Quantity); err != nil {
			return err
		}
		out = c.tickets.Mint(MintInput{
			BuyerID:         req.BuyerID,
			EventID:         sc.EventID,
			SeatClassID:     sc.ID,
			Quantity:        req.Quantity,
			UnitPriceCents:  sc.UnitPriceCents,
			TotalPriceCents: sc.UnitPriceCents * int64(req.Quantity),
		})
		return c.purchases.CreateTx(ctx, tx, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// isRetryable: lock wait timeouts, deadlocks and verification code
// collisions.  A collision mints a new code on the next attempt.
func isRetryable(err error) bool {
	return errors.Is(err, repository.ErrTransientConflict) || errors.Is(err, repository.ErrDuplicate)
}

// outcome maps a final error to its metrics label and the error returned to
// the caller.
func (c *Coordinator) outcome(err error) (string, error) {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return metrics.OutcomeInsufficient, ErrInsufficientStock
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound, ErrNotFound
	case isRetryable(err), errors.Is(err, context.DeadlineExceeded):
		if errors.Is(err, ErrTransientConflict) {
			return metrics.OutcomeTransient, err
		}
		return metrics.OutcomeTransient, fmt.Errorf("%w: %w", ErrTransientConflict, err)
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeError, err
	default:
		return metrics.OutcomeError, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}

func (c *Coordinator) observe(outcome string, qty int, start time.Time) {
	if c.metrics != nil {
		c.metrics.Observe(outcome, qty, time.Since(start))
	}
}

func (c *Coordinator) publish(ctx context.Context, log *logrus.Entry, p *model.Purchase) {
	if c.publisher == nil {
		return
	}
	ev := queue.PurchaseCommittedEvent{
		PurchaseID:       p.ID,
		BuyerID:          p.BuyerID,
		EventID:          p.EventID,
		SeatClassID:      p.SeatClassID,
		Quantity:         p.Quantity,
		UnitPriceCents:   p.UnitPriceCents,
		TotalPriceCents:  p.TotalPriceCents,
		VerificationCode: p.VerificationCode,
		PurchasedAt:      p.PurchasedAt.UTC().Format(time.RFC3339),
	}
	if id, ok := log.Data["correlation_id"].(string); ok {
		ev.CorrelationID = id
	}
	// The purchase is committed; a broker outage must neither fail nor
	// delay the response.
	pubCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(pubCtx, 5*time.Second)
		defer cancel()
		if err := c.publisher.PublishPurchaseCommitted(pubCtx, ev); err != nil {
			log.WithError(err).Warn("purchase.committed not published")
		}
	}()
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
