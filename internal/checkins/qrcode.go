package checkins

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const defaultPassSize = 256

// passPNG renders text as a PNG QR code with medium error correction
func passPNG(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultPassSize
	}

	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
	}
	return png, nil
}
