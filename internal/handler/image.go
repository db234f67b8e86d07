package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/middleware"
)

// maxUploadMemory caps how much of a multipart upload is buffered in memory
// before spilling to temp files.
const maxUploadMemory = 8 << 20

type imageResponse struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	URL        string    `json:"url"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListTripImages handles GET /trips/{tripID}/images.
func (s *Server) ListTripImages(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}

	imgs, err := s.trips.ListImages(r.Context(), middleware.UserEmail(r.Context()), tripID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]imageResponse, len(imgs))
	for i, img := range imgs {
		data[i] = imageToResponse(img)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// UploadTripImages handles POST /trips/{tripID}/images. The request is
// multipart/form-data with one or more "images" file parts, appended to the
// trip's gallery in the order they appear.
func (s *Server) UploadTripImages(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "request must be multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	parts := r.MultipartForm.File["images"]
	if len(parts) == 0 {
		writeBadRequest(w, "at least one \"images\" file part is required")
		return
	}

	files := make([][]byte, 0, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			writeBadRequest(w, "unreadable file part")
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeBadRequest(w, "unreadable file part")
			return
		}
		files = append(files, data)
	}

	created, err := s.trips.AttachImages(r.Context(), middleware.UserEmail(r.Context()), tripID, files)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]imageResponse, len(created))
	for i, img := range created {
		data[i] = imageToResponse(img)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": data})
}

// GetTripImage handles GET /trips/{tripID}/images/{imageID} and serves the
// image bytes themselves.
func (s *Server) GetTripImage(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}
	imageID, ok := imageIDParam(r)
	if !ok {
		writeBadRequest(w, "image id must be a valid UUID")
		return
	}

	data, err := s.trips.ImageData(r.Context(), middleware.UserEmail(r.Context()), tripID, imageID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = w.Write(data)
}

// DeleteTripImage handles DELETE /trips/{tripID}/images/{imageID}.
func (s *Server) DeleteTripImage(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(r)
	if !ok {
		writeBadRequest(w, "trip id must be a valid UUID")
		return
	}
	imageID, ok := imageIDParam(r)
	if !ok {
		writeBadRequest(w, "image id must be a valid UUID")
		return
	}

	if err := s.trips.DeleteImage(r.Context(), middleware.UserEmail(r.Context()), tripID, imageID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func imageToResponse(img domain.TripImage) imageResponse {
	return imageResponse{
		ID:         img.ID.String(),
		TripID:     img.TripID.String(),
		URL:        "/trips/" + img.TripID.String() + "/images/" + img.ID.String(),
		OrderIndex: img.OrderIndex,
		CreatedAt:  img.CreatedAt,
	}
}
