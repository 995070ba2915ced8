package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/folio/internal/auth"
	"github.com/eldtechnologies/folio/internal/mail"
	"github.com/eldtechnologies/folio/internal/models"
	"github.com/eldtechnologies/folio/internal/store"
	"github.com/eldtechnologies/folio/internal/web"
)

// ContactRelay delivers contact form submissions to the site owner.
type ContactRelay interface {
	SendContact(ctx context.Context, msg mail.ContactMessage) error
}

// Options carries the dependencies of a Handler.
type Options struct {
	Store      store.DataStore
	Redis      *store.RedisStore // optional
	Relay      ContactRelay
	Sessions   *auth.Sessions
	Views      *web.Views
	Logger     zerolog.Logger
	LoginPath  string
	ResumePath string
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store      store.DataStore
	redis      *store.RedisStore
	relay      ContactRelay
	sessions   *auth.Sessions
	views      *web.Views
	validate   *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	loginPath  string
	resumePath string
}

// NewHandler creates a new Handler.
func NewHandler(opts Options) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return &Handler{
		store:      opts.Store,
		redis:      opts.Redis,
		relay:      opts.Relay,
		sessions:   opts.Sessions,
		views:      opts.Views,
		validate:   validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     opts.Logger,
		loginPath:  loginPath,
		resumePath: opts.ResumePath,
	}
}

// PageData is the value every HTML template is executed with.
type PageData struct {
	Title     string
	IsAdmin   bool
	Year      int
	LoginPath string
	Works     []models.Work
	Work      *models.Work
	Form      map[string]string
	Errors    map[string][]string
	Feedback  string
	Submit    string
}

func (h *Handler) page(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		IsAdmin:   auth.IsActive(r.Context()),
		Year:      time.Now().Year(),
		LoginPath: h.loginPath,
	}
}

// render writes an HTML page, logging template failures.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	if err := h.views.Render(w, status, name, data); err != nil {
		h.logger.Error().Err(err).Str("page", name).Str("path", r.URL.Path).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// serverError logs err and renders the generic error page.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	data := h.page(r, "Error")
	data.Feedback = "An unexpected error occurred. Please try again later."
	h.render(w, r, http.StatusInternalServerError, "error", data)
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
