package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/wardrobe/internal/classifier"
	"github.com/vbonduro/wardrobe/internal/composer"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/photostore"
	"github.com/vbonduro/wardrobe/internal/service"
)

const authFailedMessage = "classifier authentication failed, check API credentials"

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// errorStatus maps a service error to the status code and message shown to
// the user.
func errorStatus(err error) (int, string) {
	var authErr *classifier.AuthError
	switch {
	case errors.Is(err, domain.ErrInvalidOccasion),
		errors.Is(err, domain.ErrInvalidWeather),
		errors.Is(err, domain.ErrInvalidStyle),
		errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &authErr):
		return http.StatusBadGateway, authFailedMessage
	case errors.Is(err, composer.ErrGeneration):
		return http.StatusBadGateway, "failed to generate a recommendation, try again later"
	case errors.Is(err, service.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, photostore.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "user_id", userID(r), "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "user_id", userID(r), "error", err)
	}
	s.respondError(w, r, status, msg)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		if err := s.renderPartial(w, status, "partials/error.html", msg); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}
