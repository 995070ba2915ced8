package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eldtechnologies/folio/internal/metrics"
	"github.com/eldtechnologies/folio/internal/models"
	"github.com/eldtechnologies/folio/internal/store"
)

// NewWork shows and handles the create-work form.
func (h *Handler) NewWork(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "New Work")
	data.Submit = "Create New Work"

	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "new_work", data)
		return
	}

	if err := parseUpload(r); err != nil {
		h.badUpload(w, r, "new_work", data, err)
		return
	}

	form := workFormFromRequest(r)
	errs := h.validateForm(form)
	image, imageType, imageErr := readImage(r)
	if imageErr != "" {
		errs["image"] = append(errs["image"], imageErr)
	}
	if len(errs) > 0 {
		data.Form = form.values()
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, "new_work", data)
		return
	}

	work := &models.Work{
		Name:           form.Name,
		Type:           form.Type,
		Description:    form.Description,
		Efforts:        form.Efforts,
		Image:          image,
		ImageType:      imageType,
		SourceCodeLink: form.SourceCodeLink,
		WebsiteLink:    form.WebsiteLink,
	}
	if err := h.store.CreateWork(r.Context(), work); err != nil {
		h.serverError(w, r, err)
		return
	}

	metrics.WorkChanges.WithLabelValues("create").Inc()
	h.logger.Info().Str("work_id", work.ID.String()).Str("name", work.Name).Msg("work created")
	redirectHome(w, r)
}

// EditWork shows and handles the edit form for the work named by ?id=.
func (h *Handler) EditWork(w http.ResponseWriter, r *http.Request) {
	work, ok := h.lookupWork(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	data := h.page(r, "Edit Work")
	data.Submit = "Edit Work"
	data.Work = work

	if r.Method != http.MethodPost {
		data.Form = WorkForm{
			Name:           work.Name,
			Type:           work.Type,
			Description:    work.Description,
			Efforts:        work.Efforts,
			SourceCodeLink: work.SourceCodeLink,
			WebsiteLink:    work.WebsiteLink,
		}.values()
		h.render(w, r, http.StatusOK, "edit_work", data)
		return
	}

	if err := parseUpload(r); err != nil {
		h.badUpload(w, r, "edit_work", data, err)
		return
	}

	form := workFormFromRequest(r)
	errs := h.validateForm(form)
	image, imageType, imageErr := readImage(r)
	if imageErr != "" {
		errs["image"] = append(errs["image"], imageErr)
	}
	if len(errs) > 0 {
		data.Form = form.values()
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, "edit_work", data)
		return
	}

	work.Name = form.Name
	work.Type = form.Type
	work.Description = form.Description
	work.Efforts = form.Efforts
	work.Image = image
	work.ImageType = imageType
	work.SourceCodeLink = form.SourceCodeLink
	work.WebsiteLink = form.WebsiteLink

	if err := h.store.UpdateWork(r.Context(), work); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	metrics.WorkChanges.WithLabelValues("update").Inc()
	h.logger.Info().Str("work_id", work.ID.String()).Msg("work updated")
	redirectHome(w, r)
}

// DeleteWork removes the work named by ?id= and returns to the landing page.
func (h *Handler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := h.store.DeleteWork(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	metrics.WorkChanges.WithLabelValues("delete").Inc()
	h.logger.Info().Str("work_id", id.String()).Msg("work deleted")
	redirectHome(w, r)
}

func (h *Handler) badUpload(w http.ResponseWriter, r *http.Request, page string, data PageData, err error) {
	h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("unreadable upload")
	data.Errors = map[string][]string{"image": {"Could not read the uploaded file."}}
	h.render(w, r, http.StatusBadRequest, page, data)
}
