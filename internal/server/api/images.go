package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handsphere/internal/gallery"
)

// maxUploadMemory is the multipart size kept in memory; larger uploads spill
// to temporary files.
const maxUploadMemory = 32 << 20

type imageResponse struct {
	gallery.Image
	Index    int        `json:"index"`
	Position [3]float64 `json:"position"`
}

type listImagesResponse struct {
	Radius float64         `json:"radius"`
	Images []imageResponse `json:"images"`
}

// ImageHandler serves the image gallery.
type ImageHandler struct {
	gallery *gallery.Gallery
}

// NewImageHandler creates a new ImageHandler over g.
func NewImageHandler(g *gallery.Gallery) *ImageHandler {
	return &ImageHandler{gallery: g}
}

// ServeHTTP routes /api/images and /api/images/{id}.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/images"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.upload(w, r)
		case http.MethodDelete:
			h.gallery.Clear()
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.get(w, r, id)
}

// list handles GET /api/images and returns every image with its position.
func (h *ImageHandler) list(w http.ResponseWriter, r *http.Request) {
	images := h.gallery.List()
	placements := h.gallery.Placements()

	resp := listImagesResponse{
		Radius: h.gallery.Radius(),
		Images: make([]imageResponse, 0, len(images)),
	}
	for i, img := range images {
		ir := imageResponse{Image: img, Index: i}
		if i < len(placements) && placements[i].ID == img.ID {
			p := placements[i].Position
			ir.Position = [3]float64{p.X, p.Y, p.Z}
		}
		resp.Images = append(resp.Images, ir)
	}

	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/images/{id} and returns the PNG texture.
func (h *ImageHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	img, ok := h.gallery.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.WriteHeader(http.StatusOK)
	w.Write(img.PNG)
}

// upload handles POST /api/images. Every part named "files" replaces the
// current set.
func (h *ImageHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	uploads := make([]gallery.Upload, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read upload")
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, gallery.Upload{Name: fh.Filename, Data: f})
	}

	if _, err := h.gallery.Replace(uploads); err != nil {
		switch {
		case errors.Is(err, gallery.ErrNoImages):
			writeError(w, http.StatusBadRequest, "No files uploaded")
		case errors.Is(err, gallery.ErrUnsupportedImage):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to process images")
		}
		return
	}

	h.list(w, r)
}
