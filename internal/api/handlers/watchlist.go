package handlers

import (
	"net/http"

	"github.com/baharkarakas/reliefshare/internal/api/httpx"
	"github.com/baharkarakas/reliefshare/internal/middleware"
	"github.com/baharkarakas/reliefshare/internal/services"
)

type WatchlistHandler struct {
	Watchlist *services.WatchlistService
}

func NewWatchlistHandler(ws *services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{Watchlist: ws}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Watchlist.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, services.ErrNotFound, "")
		return
	}
	if _, err := h.Watchlist.Add(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeError(w, r, err, "Already in watchlist")
		return
	}
	httpx.WriteMessage(w, http.StatusCreated, "Added to watchlist")
}

// Remove succeeds for absent entries, including ids that name nothing.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if ok {
		if err := h.Watchlist.Remove(r.Context(), middleware.UserID(r.Context()), id); err != nil {
			writeError(w, r, err, "")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
