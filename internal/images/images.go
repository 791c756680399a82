// Package images normalizes uploaded map screenshots. Every accepted
// image is center-cropped to the 720x404 card size and re-encoded as
// JPEG, so stored blobs have a uniform shape and format regardless of
// what the client sent.
package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	cardWidth   = 720
	cardHeight  = 404
	jpegQuality = 70
)

// ContentType is the MIME type of every normalized image.
const ContentType = "image/jpeg"

// Ext is the file extension of every normalized image.
const Ext = ".jpg"

// Normalize decodes data, fills the card frame with a centered crop,
// and re-encodes it as JPEG. Fails on anything that does not decode as
// an image.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	resized := imaging.Fill(img, cardWidth, cardHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
