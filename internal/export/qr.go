// Package export renders printable artifacts for a committed purchase.  It
// only reads purchase data.
package export

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of the QR PNG.
const QRSize = 256

// QRPNG encodes the verification code as a PNG QR image.  The payload is
// the bare code so any scanner at the gate can feed it to the verify route.
func QRPNG(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("empty verification code")
	}
	return qrcode.Encode(code, qrcode.Medium, QRSize)
}
