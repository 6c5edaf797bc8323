package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/wardrobe/internal/service"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos,
// detected by magic-byte sniffing.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) handleImageRecommendation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		s.respondError(w, r, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "image file required")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	if header.Size > maxPhotoSize {
		s.respondError(w, r, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "user_id", userID(r), "error", err)
		s.respondError(w, r, http.StatusInternalServerError, "failed to read file")
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.respondError(w, r, http.StatusBadRequest, "unsupported image format, upload a JPEG or PNG")
		return
	}

	entry, err := s.service.RecommendByImage(r.Context(), userID(r), selectionFromForm(r), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondEntry(w, r, entry)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	reader, mimeType, err := s.service.Photo(r.Context(), userID(r), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "storage_key", key, "error", err)
	}
}

func selectionFromForm(r *http.Request) service.Selection {
	return service.Selection{
		Occasion: r.FormValue("occasion"),
		Weather:  r.FormValue("weather"),
		Style:    r.FormValue("style"),
	}
}

func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
