// Package imaging handles uploaded medical images: format detection,
// metadata extraction, transient on-disk staging, and payload encoding.
package imaging

import (
	"encoding/base64"
	"errors"
)

// ErrUnsupportedFormat is returned for anything other than PNG or JPEG.
var ErrUnsupportedFormat = errors.New("unsupported image format: only PNG and JPEG are supported")

// Sniff detects the image MIME type from magic bytes.
func Sniff(data []byte) (string, error) {
	if len(data) >= 8 &&
		data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' &&
		data[4] == '\r' && data[5] == '\n' && data[6] == 0x1A && data[7] == '\n' {
		return "image/png", nil
	}
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg", nil
	}
	return "", ErrUnsupportedFormat
}

// DataURL encodes image bytes as a base64 data URL for inline API payloads.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
