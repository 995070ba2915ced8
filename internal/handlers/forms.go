package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxImageSize = 8 << 20 // 8 MiB

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ContactForm is the visitor contact form.
type ContactForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email,max=254"`
	Subject string `form:"subject" validate:"required,max=200"`
	Message string `form:"message" validate:"required"`
}

func contactFormFromRequest(r *http.Request) ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
}

func (f ContactForm) values() map[string]string {
	return map[string]string{
		"name":    f.Name,
		"email":   f.Email,
		"subject": f.Subject,
		"message": f.Message,
	}
}

// WorkForm holds the text fields of the create and edit forms.
type WorkForm struct {
	Name           string `form:"name" validate:"required,max=25"`
	Type           string `form:"type" validate:"required,max=25"`
	Description    string `form:"description" validate:"required,min=100"`
	Efforts        string `form:"efforts" validate:"required"`
	SourceCodeLink string `form:"source_code_link" validate:"omitempty,url"`
	WebsiteLink    string `form:"website_link" validate:"omitempty,url"`
}

func workFormFromRequest(r *http.Request) WorkForm {
	return WorkForm{
		Name:           strings.TrimSpace(r.PostFormValue("name")),
		Type:           strings.TrimSpace(r.PostFormValue("type")),
		Description:    strings.TrimSpace(r.PostFormValue("description")),
		Efforts:        strings.TrimSpace(r.PostFormValue("efforts")),
		SourceCodeLink: strings.TrimSpace(r.PostFormValue("source_code_link")),
		WebsiteLink:    strings.TrimSpace(r.PostFormValue("website_link")),
	}
}

func (f WorkForm) values() map[string]string {
	return map[string]string{
		"name":             f.Name,
		"type":             f.Type,
		"description":      f.Description,
		"efforts":          f.Efforts,
		"source_code_link": f.SourceCodeLink,
		"website_link":     f.WebsiteLink,
	}
}

// LoginForm is the admin login form.
type LoginForm struct {
	ID       string `form:"id" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func loginFormFromRequest(r *http.Request) LoginForm {
	return LoginForm{
		ID:       strings.TrimSpace(r.PostFormValue("id")),
		Password: r.PostFormValue("password"),
	}
}

// validateForm runs struct validation and returns messages keyed by form field.
func (h *Handler) validateForm(form any) map[string][]string {
	errs := make(map[string][]string)
	err := h.validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = append(errs["form"], "Invalid form submission.")
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = append(errs[fe.Field()], fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// parseUpload parses a multipart body; plain urlencoded bodies are accepted too.
func parseUpload(r *http.Request) error {
	err := r.ParseMultipartForm(maxImageSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// readImage reads the uploaded "image" file. It returns the bytes, the
// sniffed content type, and a user-facing message when the upload is
// missing or not an image.
func readImage(r *http.Request) ([]byte, string, string) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", "This field is required."
		}
		return nil, "", "Could not read the uploaded file."
	}
	defer file.Close()

	if !allowedImageExts[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, "", "Images only!"
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, "", "Could not read the uploaded file."
	}
	if len(data) == 0 {
		return nil, "", "This field is required."
	}
	if len(data) > maxImageSize {
		return nil, "", "Image is too large."
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", "Images only!"
	}
	return data, contentType, ""
}
