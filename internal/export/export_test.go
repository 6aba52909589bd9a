package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("TICKET-7f1c")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = QRPNG("")
	assert.Error(t, err)
}

func TestTicketPDF(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc, err := TicketPDF(model.PurchaseSummary{
		Purchase: model.Purchase{
			ID: 11, BuyerID: "u1", EventID: 42, SeatClassID: 7, Quantity: 3,
			UnitPriceCents: 5000, TotalPriceCents: 15000, VerificationCode: "TICKET-7f1c", PurchasedAt: at,
		},
		EventName: "Gala Night", EventStartsAt: at, EventLocation: "Hall A", SeatClassLabel: "VIP",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150.00", FormatCents(15000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-1.50", FormatCents(-150))
}
