package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"

	// Register decoders for image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"
)

// Info describes an uploaded image.
type Info struct {
	MIME        string
	Width       int
	Height      int
	ByteSize    int64
	Fingerprint string
}

// Describe validates the image and extracts its metadata.
func Describe(data []byte) (Info, error) {
	mime, err := Sniff(data)
	if err != nil {
		return Info{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image dimensions: %w", err)
	}

	return Info{
		MIME:        mime,
		Width:       cfg.Width,
		Height:      cfg.Height,
		ByteSize:    int64(len(data)),
		Fingerprint: Fingerprint(data),
	}, nil
}

// Fingerprint computes the SHA-256 checksum of data as a hex string.
func Fingerprint(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
