package handlers

import (
	"html"
	"net/http"

	"github.com/eldtechnologies/folio/internal/mail"
)

const (
	contactSent   = "Form successfully sent! You will be contacted within 2-3 business days."
	contactFailed = "Your message could not be sent right now. Please try again later."
)

// Contact shows the contact form and relays submissions by email.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Contact")
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "contact", data)
		return
	}

	form := contactFormFromRequest(r)
	if errs := h.validateForm(form); len(errs) > 0 {
		data.Form = form.values()
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, "contact", data)
		return
	}

	msg := mail.ContactMessage{
		Name:    h.strip(form.Name),
		Email:   form.Email,
		Subject: h.strip(form.Subject),
		Message: h.strip(form.Message),
	}
	if err := h.relay.SendContact(r.Context(), msg); err != nil {
		h.logger.Error().Err(err).Str("from", form.Email).Msg("contact relay failed")
		data.Form = form.values()
		data.Feedback = contactFailed
		h.render(w, r, http.StatusBadGateway, "contact", data)
		return
	}

	h.logger.Info().Str("from", form.Email).Msg("contact message relayed")
	data.Feedback = contactSent
	h.render(w, r, http.StatusOK, "contact", data)
}

// strip removes markup from visitor input, keeping the plain text.
func (h *Handler) strip(s string) string {
	return html.UnescapeString(h.sanitizer.Sanitize(s))
}
