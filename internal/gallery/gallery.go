// Package gallery holds the uploaded image set and pairs it with positions
// on the display sphere.
package gallery

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handsphere/internal/sphere"
)

// Defaults mirror the upload limits of the viewer.
const (
	DefaultMaxImages = 100
	DefaultImageSize = 512
)

// ErrNoImages is returned when an upload contains no files.
var ErrNoImages = errors.New("no images")

// Image is one processed, square PNG texture.
type Image struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	PNG       []byte    `json:"-"`
}

// Upload is a raw file handed to Replace.
type Upload struct {
	Name string
	Data io.Reader
}

// Placement pairs an image with its billboard position.
type Placement struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Position r3.Vec `json:"position"`
}

// Config bounds the gallery.
type Config struct {
	MaxImages int
	ImageSize int
	Radius    float64
}

// Gallery is the in-memory image set. It is safe for concurrent use.
type Gallery struct {
	config Config

	mu      sync.RWMutex
	images  []Image
	radius  float64
	layout  []r3.Vec
	version uint64

	onChange func(n int)
}

// New creates an empty gallery. Zero limits use the defaults and a
// non-positive radius uses 5.
func New(config Config) *Gallery {
	if config.MaxImages <= 0 {
		config.MaxImages = DefaultMaxImages
	}
	if config.ImageSize <= 0 {
		config.ImageSize = DefaultImageSize
	}
	if !(config.Radius > 0) {
		config.Radius = 5
	}
	return &Gallery{config: config, radius: config.Radius, layout: sphere.Layout(0, config.Radius)}
}

// OnChange registers fn to be called with the new image count after every
// successful Replace or Clear.
func (g *Gallery) OnChange(fn func(n int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// Replace processes uploads and swaps them in as the whole image set. Files
// beyond MaxImages are ignored. If any file fails to process the current set
// is left untouched.
func (g *Gallery) Replace(uploads []Upload) ([]Image, error) {
	if len(uploads) == 0 {
		return nil, ErrNoImages
	}
	if len(uploads) > g.config.MaxImages {
		uploads = uploads[:g.config.MaxImages]
	}

	processed := make([]Image, len(uploads))
	now := time.Now()

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, up := range uploads {
		eg.Go(func() error {
			data, err := Process(up.Data, g.config.ImageSize)
			if err != nil {
				return fmt.Errorf("%s: %w", up.Name, err)
			}
			processed[i] = Image{
				ID:        uuid.NewString(),
				Name:      up.Name,
				Size:      g.config.ImageSize,
				CreatedAt: now,
				PNG:       data,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.set(processed)
	return processed, nil
}

// Clear removes every image.
func (g *Gallery) Clear() {
	g.set(nil)
}

func (g *Gallery) set(images []Image) {
	g.mu.Lock()
	g.images = images
	if len(images) != len(g.layout) {
		g.layout = sphere.Layout(len(images), g.radius)
	}
	g.version++
	fn := g.onChange
	g.mu.Unlock()

	if fn != nil {
		fn(len(images))
	}
}

// Len returns the number of images.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.images)
}

// Version increments on every change to the image set.
func (g *Gallery) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// List returns the images without their PNG payloads.
func (g *Gallery) List() []Image {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Image, len(g.images))
	for i, img := range g.images {
		img.PNG = nil
		out[i] = img
	}
	return out
}

// Get returns the image with the given ID.
func (g *Gallery) Get(id string) (Image, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, img := range g.images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// Placements pairs each image with its position on the sphere, in upload
// order. The layout is regenerated only when the image count changes.
func (g *Gallery) Placements() []Placement {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Placement, len(g.images))
	for i, img := range g.images {
		out[i] = Placement{ID: img.ID, Index: i, Position: g.layout[i]}
	}
	return out
}

// Radius returns the sphere radius used for placements.
func (g *Gallery) Radius() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.radius
}
