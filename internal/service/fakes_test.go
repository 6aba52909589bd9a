package service

import (
	"context"
	"sync"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// memStore is an in-memory inventory whose transactions serialize on a
// mutex, standing in for the seat class row lock.  A failed transaction
// restores the snapshot taken at begin.
type memStore struct {
	mu        sync.Mutex
	classes   map[uint64]model.SeatClass
	purchases []model.Purchase
	nextID    uint64

	// failures injected into CreateTx, consumed in order
	createErrs []error
	txCount    int
}

func newMemStore(classes ...model.SeatClass) *memStore {
	s := &memStore{classes: map[uint64]model.SeatClass{}}
	for _, c := range classes {
		s.classes[c.ID] = c
	}
	return s
}

func (s *memStore) InTx(ctx context.Context, fn func(tx database.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	classes := make(map[uint64]model.SeatClass, len(s.classes))
	for k, v := range s.classes {
		classes[k] = v
	}
	purchases := append([]model.Purchase(nil), s.purchases...)
	nextID := s.nextID

	if err := fn(nil); err != nil {
		s.classes, s.purchases, s.nextID = classes, purchases, nextID
		return err
	}
	return nil
}

func (s *memStore) GetForUpdateTx(_ context.Context, _ database.DBTX, eventID, seatClassID uint64) (*model.SeatClass, error) {
	c, ok := s.classes[seatClassID]
	if !ok || c.EventID != eventID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) DecrementTx(_ context.Context, _ database.DBTX, seatClassID uint64, amount int) error {
	c := s.classes[seatClassID]
	if c.RemainingQuantity < amount {
		return repository.ErrInsufficientStock
	}
	c.RemainingQuantity -= amount
	s.classes[seatClassID] = c
	return nil
}

func (s *memStore) CreateTx(_ context.Context, _ database.DBTX, p *model.Purchase) error {
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	s.nextID++
	p.ID = s.nextID
	s.purchases = append(s.purchases, *p)
	return nil
}

func (s *memStore) GetByCode(_ context.Context, code string) (*model.PurchaseSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if p.VerificationCode == code {
			c := s.classes[p.SeatClassID]
			return &model.PurchaseSummary{Purchase: p, EventName: "Gala", SeatClassLabel: c.Label}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) class(id uint64) model.SeatClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes[id]
}

func (s *memStore) sold(seatClassID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.purchases {
		if p.SeatClassID == seatClassID {
			n += p.Quantity
		}
	}
	return n
}

type fakePublisher struct {
	events chan queue.PurchaseCommittedEvent
	err    error
}

func (f *fakePublisher) PublishPurchaseCommitted(_ context.Context, ev queue.PurchaseCommittedEvent) error {
	f.events <- ev
	return f.err
}
