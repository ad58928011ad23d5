package crypto

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRCodeSize is the default width and height of generated QR codes, in pixels.
const QRCodeSize = 256

// QRCodePNG renders content as a PNG QR code.
func QRCodePNG(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
