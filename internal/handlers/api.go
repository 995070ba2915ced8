package handlers

import (
	"net/http"
	"time"
)

// WorkSummary is the public JSON shape of a work.
type WorkSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Efforts        []string `json:"efforts"`
	ImageURL       string   `json:"image_url"`
	SourceCodeLink string   `json:"source_code_link,omitempty"`
	WebsiteLink    string   `json:"website_link,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// WorksResponse is returned by ListWorksJSON.
type WorksResponse struct {
	Works []WorkSummary `json:"works"`
	Total int           `json:"total"`
}

// ListWorksJSON handles GET /api/works.
func (h *Handler) ListWorksJSON(w http.ResponseWriter, r *http.Request) {
	works, err := h.store.ListWorks(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list works")
		h.Error(w, http.StatusInternalServerError, "failed to list works")
		return
	}

	resp := WorksResponse{Works: make([]WorkSummary, 0, len(works))}
	for _, work := range works {
		resp.Works = append(resp.Works, WorkSummary{
			ID:             work.ID.String(),
			Name:           work.Name,
			Type:           work.Type,
			Description:    work.Description,
			Efforts:        work.EffortList(),
			ImageURL:       "/works/" + work.ID.String() + "/image",
			SourceCodeLink: work.SourceCodeLink,
			WebsiteLink:    work.WebsiteLink,
			CreatedAt:      work.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	resp.Total = len(resp.Works)

	h.JSON(w, http.StatusOK, resp)
}
