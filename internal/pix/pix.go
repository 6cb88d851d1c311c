// Package pix renders the static PIX copy-and-paste codes attached to plans.
package pix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 128
	MaxSize     = 1024
)

var ErrNoReference = errors.New("no payment reference")

// ClampSize maps a requested image size into [MinSize, MaxSize]; zero means DefaultSize.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// QRCode encodes the reference as a PNG. The reference is opaque and passed through untouched.
func QRCode(reference string, size int) ([]byte, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrNoReference
	}
	png, err := qrcode.Encode(reference, qrcode.High, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
