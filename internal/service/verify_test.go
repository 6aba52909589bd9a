package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func committedStore(t *testing.T) (*memStore, *model.Purchase) {
	t.Helper()
	s := newMemStore(vipClass(10))
	p, err := newTestCoordinator(s, 1).Purchase(context.Background(), PurchaseRequest{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3})
	require.NoError(t, err)
	return s, p
}

func TestResolveIsIdempotent(t *testing.T) {
	s, p := committedStore(t)
	v := NewVerifier(s)

	a, err := v.Resolve(context.Background(), p.VerificationCode, DetailFull)
	require.NoError(t, err)
	b, err := v.Resolve(context.Background(), p.VerificationCode, DetailFull)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveDetailLevels(t *testing.T) {
	s, p := committedStore(t)
	v := NewVerifier(s)

	limited, err := v.Resolve(context.Background(), p.VerificationCode, DetailLimited)
	require.NoError(t, err)
	assert.False(t, limited.Full)
	assert.Empty(t, limited.BuyerID)
	assert.Zero(t, limited.TotalPriceCents)
	assert.Zero(t, limited.PurchaseID)
	assert.Equal(t, 3, limited.Quantity)
	assert.Equal(t, "VIP", limited.SeatClassLabel)

	full, err := v.Resolve(context.Background(), p.VerificationCode, DetailFull)
	require.NoError(t, err)
	assert.True(t, full.Full)
	assert.Equal(t, p.ID, full.PurchaseID)
	assert.Equal(t, "u1", full.BuyerID)
}

func TestResolveWithoutPrefix(t *testing.T) {
	s, p := committedStore(t)
	view, err := NewVerifier(s).Resolve(context.Background(), strings.TrimPrefix(p.VerificationCode, "TICKET-"), DetailLimited)
	require.NoError(t, err)
	assert.Equal(t, p.VerificationCode, view.VerificationCode)
}

func TestResolveNotFound(t *testing.T) {
	s, _ := committedStore(t)
	v := NewVerifier(s)
	for _, code := range []string{"", "  ", "TICKET-nope"} {
		_, err := v.Resolve(context.Background(), code, DetailFull)
		assert.ErrorIs(t, err, ErrNotFound, "code %q", code)
	}
}

type brokenLookup struct{}

func (brokenLookup) GetByCode(context.Context, string) (*model.PurchaseSummary, error) {
	return nil, errors.New("db down")
}

func TestResolveStorageFailure(t *testing.T) {
	_, err := NewVerifier(brokenLookup{}).Resolve(context.Background(), "TICKET-x", DetailFull)
	assert.ErrorIs(t, err, ErrPersistence)
}
