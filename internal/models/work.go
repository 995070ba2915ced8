package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Work is a portfolio entry.
type Work struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	Efforts        string    `json:"efforts"` // newline separated
	Image          []byte    `json:"-"`
	ImageType      string    `json:"image_type"`
	SourceCodeLink string    `json:"source_code_link,omitempty"`
	WebsiteLink    string    `json:"website_link,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffortList splits Efforts into trimmed, non-empty lines.
func (w *Work) EffortList() []string {
	lines := strings.Split(strings.ReplaceAll(w.Efforts, "\r\n", "\n"), "\n")
	efforts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			efforts = append(efforts, line)
		}
	}
	return efforts
}
