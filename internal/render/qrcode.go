package render

import (
	"errors"
	"image/color"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// QRForeground matches the rain glyph colour so the code reads as part of the page.
var QRForeground = color.RGBA{R: 0x28, G: 0xB4, B: 0xF0, A: 0xFF}

// PreviewQRCodePNG encodes url as a PNG QR code in the overlay palette.
func PreviewQRCodePNG(url string, sizePx int) ([]byte, error) {
	if url == "" {
		return nil, errors.New("empty qr payload")
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qrCode.ForegroundColor = QRForeground
	qrCode.BackgroundColor = Background

	return qrCode.PNG(sizePx)
}
