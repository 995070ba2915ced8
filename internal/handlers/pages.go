package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eldtechnologies/folio/internal/models"
)

// Home renders the landing page with all works.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.ListWorks(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := h.page(r, "")
	data.Works = works
	h.render(w, r, http.StatusOK, "index", data)
}

// About renders the about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", h.page(r, "About"))
}

// Services renders the services page.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "services", h.page(r, "Services"))
}

// Works renders the list of works.
func (h *Handler) Works(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.ListWorks(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := h.page(r, "Works")
	data.Works = works
	h.render(w, r, http.StatusOK, "works", data)
}

// WorkSingle renders one work selected by the id query parameter.
func (h *Handler) WorkSingle(w http.ResponseWriter, r *http.Request) {
	work, ok := h.lookupWork(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	data := h.page(r, work.Name)
	data.Work = work
	h.render(w, r, http.StatusOK, "work_single", data)
}

// WorkImage serves the stored image bytes of a work.
func (h *Handler) WorkImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	work, err := h.store.GetWork(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("work_id", id.String()).Msg("image lookup failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if work == nil || len(work.Image) == 0 {
		http.NotFound(w, r)
		return
	}

	contentType := work.ImageType
	if contentType == "" {
		contentType = http.DetectContentType(work.Image)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(work.Image)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(work.Image)
}

// Resume serves the resume document as a download.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.resumePath); err != nil {
		h.logger.Warn().Err(err).Str("path", h.resumePath).Msg("resume not available")
		h.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(h.resumePath)+`"`)
	http.ServeFile(w, r, h.resumePath)
}

// NotFound renders the 404 page with the works list.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.ListWorks(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list works for 404 page")
	}
	data := h.page(r, "Not Found")
	data.Works = works
	h.render(w, r, http.StatusNotFound, "error404", data)
}

// lookupWork parses rawID and loads the work, rendering 404 or 500 itself
// when it cannot.
func (h *Handler) lookupWork(w http.ResponseWriter, r *http.Request, rawID string) (*models.Work, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		h.NotFound(w, r)
		return nil, false
	}
	work, err := h.store.GetWork(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	if work == nil {
		h.NotFound(w, r)
		return nil, false
	}
	return work, true
}
