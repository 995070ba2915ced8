package handlers

import (
	"net/http"

	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/metrics"
)

// Login shows the login form and starts an admin session on success.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Login")
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "login", data)
		return
	}

	form := loginFormFromRequest(r)
	data.Form = map[string]string{"id": form.ID}

	if errs := h.validateForm(form); len(errs) > 0 {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, "login", data)
		return
	}

	admin, err := h.store.GetAdmin(r.Context(), form.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if admin == nil {
		metrics.LoginAttempts.WithLabelValues("unknown_id").Inc()
		data.Errors = map[string][]string{"id": {"Invalid ID."}}
		h.render(w, r, http.StatusUnauthorized, "login", data)
		return
	}
	if !crypto.CheckPassword(admin.PasswordHash, form.Password) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		h.logger.Warn().Str("admin_id", admin.ID).Msg("login with wrong password")
		data.Errors = map[string][]string{"password": {"Incorrect password."}}
		h.render(w, r, http.StatusUnauthorized, "login", data)
		return
	}

	if _, err := h.sessions.Start(w, admin.ID); err != nil {
		h.serverError(w, r, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.logger.Info().Str("admin_id", admin.ID).Msg("admin logged in")
	redirectHome(w, r)
}

// Logout ends the admin session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		h.logger.Warn().Err(err).Msg("session revocation failed")
	}
	redirectHome(w, r)
}
