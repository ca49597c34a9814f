package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	// Registered decoders for accepted uploads.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when an upload cannot be decoded as
// JPEG, PNG or WebP.
var ErrUnsupportedImage = errors.New("unsupported image")

// Square crops src to its centred largest square and scales it to size×size.
func Square(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())

	g := gift.New(
		gift.CropToSize(side, side, gift.CenterAnchor),
		gift.Resize(size, size, gift.LanczosResampling),
	)
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return dst
}

// Process decodes r, squares it to size and returns the PNG encoding.
func Process(r io.Reader, size int) ([]byte, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, format)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Square(src, size)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
