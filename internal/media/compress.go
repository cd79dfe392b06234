// Package media provides the photo compression boundary: meal photos are
// bounded and re-encoded as JPEG before upload and storage.
package media

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	apperrors "github.com/hxlyu/safegain/internal/errors"
)

const (
	// MaxDimension caps the longest side of an uploaded photo.
	MaxDimension = 1024
	// JPEGQuality balances size against enough detail for food recognition.
	JPEGQuality = 80
)

// Compress decodes a photo (JPEG, PNG, GIF or WebP) and re-encodes it as a
// bounded JPEG. Oversized photos are scaled down preserving aspect ratio;
// smaller ones are re-encoded as-is.
func Compress(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "unsupported or corrupted image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to encode image", err)
	}
	return buf.Bytes(), nil
}
