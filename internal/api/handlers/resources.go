package handlers

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/reliefshare/internal/api/httpx"
	"github.com/baharkarakas/reliefshare/internal/middleware"
	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/baharkarakas/reliefshare/internal/services"
)

type ResourceHandler struct {
	Resources *services.ResourceService
}

func NewResourceHandler(rs *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{Resources: rs}
}

// List serves the public listing. Optional filters: type (repeatable or
// comma separated), q, available=true.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f models.ResourceFilter
	for _, v := range q["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}
	f.Query = strings.TrimSpace(q.Get("q"))
	f.AvailableOnly = q.Get("available") == "true"

	out, err := h.Resources.ListAll(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	out, err := h.Resources.ListOwned(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := parseResourceForm(w, r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := h.Resources.Create(r.Context(), middleware.UserID(r.Context()), f.createInput(), f.uploads)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, services.ErrNotFound, "")
		return
	}
	uid := middleware.UserID(r.Context())
	if err := h.Resources.Authorize(r.Context(), uid, id); err != nil {
		writeError(w, r, err, "")
		return
	}
	f, err := parseResourceForm(w, r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	var res models.Resource
	if f.availabilityOnly() {
		res, err = h.Resources.SetAvailability(r.Context(), uid, id, *f.available)
	} else {
		res, err = h.Resources.Update(r.Context(), uid, id, f.updateInput(), f.uploads)
	}
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, services.ErrNotFound, "")
		return
	}
	if err := h.Resources.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
