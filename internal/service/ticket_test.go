package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintIsPureConstruction(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))
	f := NewTicketFactory(func() time.Time { return at })

	in := MintInput{BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3, UnitPriceCents: 5000, TotalPriceCents: 15000}
	p := f.Mint(in)

	assert.Zero(t, p.ID)
	assert.Equal(t, "u1", p.BuyerID)
	assert.EqualValues(t, 15000, p.TotalPriceCents)
	assert.Equal(t, time.UTC, p.PurchasedAt.Location())
	assert.Equal(t, at.UTC().Truncate(time.Millisecond), p.PurchasedAt)

	require.True(t, strings.HasPrefix(p.VerificationCode, "TICKET-"))
	_, err := uuid.Parse(strings.TrimPrefix(p.VerificationCode, "TICKET-"))
	assert.NoError(t, err)
}

func TestVerificationCodesAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		c := NewVerificationCode()
		_, dup := seen[c]
		require.False(t, dup, "duplicate code %s", c)
		seen[c] = struct{}{}
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   ":             "",
		"TICKET-abc":      "TICKET-abc",
		"ticket-abc":      "TICKET-abc",
		"  TICKET-abc \n": "TICKET-abc",
		"abc":             "TICKET-abc",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCode(in), "input %q", in)
	}
}
