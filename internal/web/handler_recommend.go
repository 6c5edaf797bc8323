package web

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/vbonduro/wardrobe/internal/domain"
)

type indexData struct {
	Occasions []domain.Option
	Weathers  []domain.Option
	Styles    []domain.Option
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{Occasions: domain.Occasions, Weathers: domain.Weathers, Styles: domain.Styles}
	if err := s.renderPage(w, data, "base.html", "index.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]domain.Option{
		"occasions": domain.Occasions,
		"weathers":  domain.Weathers,
		"styles":    domain.Styles,
	})
}

func (s *Server) handleTextRecommendation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to parse form")
		return
	}

	entry, err := s.service.RecommendByText(r.Context(), userID(r), selectionFromForm(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondEntry(w, r, entry)
}

func (s *Server) respondEntry(w http.ResponseWriter, r *http.Request, entry *domain.HistoryEntry) {
	if isHTMX(r) {
		if err := s.renderPartial(w, http.StatusOK, "partials/recommendation.html", entry); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// handleHistory lists entries newest first for the page and in insertion
// order for JSON clients.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	if isHTMX(r) {
		newest := slices.Clone(entries)
		slices.Reverse(newest)
		if err := s.renderPartial(w, http.StatusOK, "partials/history.html", newest); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	data, err := s.service.ExportHistory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_history.json"`, id))
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write export failed", "user_id", id, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
