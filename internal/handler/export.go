package handler

import (
	"net/http"

	"github.com/mkowalczyk/triplog/internal/middleware"
	"github.com/mkowalczyk/triplog/internal/service"
)

// ExportCSV handles GET /export.csv. It streams the user's full journal as
// a CSV attachment, one row per photo.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context(), middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	if err := service.WriteCSV(w, rows); err != nil {
		// Headers are already on the wire; nothing useful left to send.
		return
	}
}
