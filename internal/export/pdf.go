package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketPDF renders a single-page A4 e-ticket with the purchase summary on
// the left and the verification QR on the right.
func TicketPDF(p model.PurchaseSummary) ([]byte, error) {
	qr, err := QRPNG(p.VerificationCode)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("E-Ticket "+p.VerificationCode, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// --- Header ---
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "OFFICIAL E-TICKET")
	pdf.Ln(18)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// --- Summary + QR ---
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 62, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(p.EventName))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"When: " + p.EventStartsAt.UTC().Format("Mon 02 Jan 2006 15:04 MST"),
		"Where: " + p.EventLocation,
		"Seat class: " + p.SeatClassLabel,
		fmt.Sprintf("Quantity: %d", p.Quantity),
		"Total paid: " + FormatCents(p.TotalPriceCents),
		"Purchased: " + p.PurchasedAt.UTC().Format(time.RFC3339),
	}
	for _, l := range lines {
		pdf.SetX(20)
		pdf.Cell(0, 8, tr(l))
		pdf.Ln(6)
	}

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	// --- Code ---
	pdf.SetXY(15, yStart+70)
	pdf.SetFont("Courier", "B", 11)
	pdf.CellFormat(180, 8, p.VerificationCode, "", 0, "C", false, 0, "")

	// --- Footer ---
	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Present this code at the entrance. One scan admits the quantity shown.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatCents renders an amount in cents as a decimal with two places.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
