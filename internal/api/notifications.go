package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simdash/internal/notify"
)

// handleListNotifications returns the retained notifications, oldest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	list := s.notes.List()
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list, "count": len(list)})
}

// handleDismissNotification removes one notification.
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.notes.Dismiss(id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeNotFound(w, "notification not found")
			return
		}
		writeInternalError(w, "failed to dismiss notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
