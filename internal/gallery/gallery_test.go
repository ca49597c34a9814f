package gallery

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handsphere/internal/sphere"
)

// striped returns a w×h image whose left third is red, middle third green
// and right third blue.
func striped(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{A: 255}
			switch {
			case x < w/3:
				c.R = 255
			case x < 2*w/3:
				c.G = 255
			default:
				c.B = 255
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func uploads(t *testing.T, n int) []Upload {
	t.Helper()
	out := make([]Upload, n)
	data := encodePNG(t, striped(30, 20))
	for i := range out {
		out[i] = Upload{Name: "img.png", Data: bytes.NewReader(data)}
	}
	return out
}

func TestSquare_CentreCrop(t *testing.T) {
	dst := Square(striped(300, 100), 64)

	assert.Equal(t, image.Rect(0, 0, 64, 64), dst.Bounds())

	// The centre square of a 300×100 image lies inside the green stripe.
	r, g, b, _ := dst.At(32, 32).RGBA()
	assert.Greater(t, g, r)
	assert.Greater(t, g, b)
	r, g, _, _ = dst.At(2, 32).RGBA()
	assert.Greater(t, g, r, "red stripe must be cropped away")
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"png landscape", func(t *testing.T) []byte { return encodePNG(t, striped(120, 40)) }},
		{"jpeg portrait", func(t *testing.T) []byte { return encodeJPEG(t, striped(40, 120)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Process(bytes.NewReader(tt.data(t)), 32)
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
		})
	}
}

func TestProcess_Unsupported(t *testing.T) {
	_, err := Process(strings.NewReader("not an image"), 32)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestGallery_Replace(t *testing.T) {
	g := New(Config{ImageSize: 16, Radius: 5})

	var changes []int
	g.OnChange(func(n int) { changes = append(changes, n) })

	images, err := g.Replace(uploads(t, 10))
	require.NoError(t, err)
	require.Len(t, images, 10)
	assert.Equal(t, 10, g.Len())

	ids := make(map[string]bool)
	for _, img := range images {
		assert.NotEmpty(t, img.ID)
		assert.False(t, ids[img.ID], "ids must be unique")
		ids[img.ID] = true
	}

	got, ok := g.Get(images[3].ID)
	require.True(t, ok)
	assert.NotEmpty(t, got.PNG)

	for _, img := range g.List() {
		assert.Nil(t, img.PNG, "List omits payloads")
	}

	// A second upload replaces rather than appends.
	_, err = g.Replace(uploads(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	_, ok = g.Get(images[3].ID)
	assert.False(t, ok)

	assert.Equal(t, []int{10, 3}, changes)
}

func TestGallery_Limit(t *testing.T) {
	g := New(Config{MaxImages: 4, ImageSize: 8})

	images, err := g.Replace(uploads(t, 9))
	require.NoError(t, err)
	assert.Len(t, images, 4)
}

func TestGallery_EmptyUpload(t *testing.T) {
	g := New(Config{ImageSize: 8})
	_, err := g.Replace(uploads(t, 2))
	require.NoError(t, err)
	version := g.Version()

	_, err = g.Replace(nil)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, version, g.Version())
}

func TestGallery_FailedUploadKeepsSet(t *testing.T) {
	g := New(Config{ImageSize: 8})
	_, err := g.Replace(uploads(t, 2))
	require.NoError(t, err)

	bad := append(uploads(t, 2), Upload{Name: "notes.txt", Data: strings.NewReader("hello")})
	_, err = g.Replace(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "notes.txt")
	assert.Equal(t, 2, g.Len())
}

func TestGallery_Placements(t *testing.T) {
	g := New(Config{ImageSize: 8, Radius: 5})
	assert.Empty(t, g.Placements())

	images, err := g.Replace(uploads(t, 10))
	require.NoError(t, err)

	placements := g.Placements()
	require.Len(t, placements, 10)

	want := sphere.Layout(10, 5)
	for i, p := range placements {
		assert.Equal(t, images[i].ID, p.ID)
		assert.Equal(t, i, p.Index)
		assert.InDelta(t, 5, r3.Norm(p.Position), 1e-9)
		if diff := cmp.Diff(want[i], p.Position); diff != "" {
			t.Errorf("placement %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	g.Clear()
	assert.Empty(t, g.Placements())
	assert.Equal(t, 0, g.Len())
}

func TestNew_Defaults(t *testing.T) {
	g := New(Config{Radius: math.NaN()})
	assert.Equal(t, DefaultMaxImages, g.config.MaxImages)
	assert.Equal(t, DefaultImageSize, g.config.ImageSize)
	assert.Equal(t, 5.0, g.Radius())
}
