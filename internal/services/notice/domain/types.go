// Package domain defines the types and interfaces for the notice service
package domain

import (
	"strings"
	"time"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

// Category is a board category on the department notice site
type Category string

// Board categories as scraped from the site
const (
	CategoryAll              Category = "ALL"
	CategoryNormal           Category = "NORMAL"
	CategoryStudent          Category = "STUDENT"
	CategoryScholarship      Category = "SCHOLARSHIP"
	CategorySimCom           Category = "SIM_COM"
	CategoryGLSOP            Category = "GL_SOP"
	CategoryGraduateSchool   Category = "GRADUATE_SCHOOL"
	CategoryGraduateContract Category = "GRADUATE_CONTRACT"
)

// Categories returns all board categories in a stable order
func Categories() []Category {
	return []Category{
		CategoryAll,
		CategoryNormal,
		CategoryStudent,
		CategoryScholarship,
		CategorySimCom,
		CategoryGLSOP,
		CategoryGraduateSchool,
		CategoryGraduateContract,
	}
}

// ParseCategory maps a wire/storage string to a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", perr.Validationf("unknown category %q", s)
}

// String implements fmt.Stringer
func (c Category) String() string { return string(c) }

// State is the lifecycle state of a stored notice
type State string

// Lifecycle states. A notice is NEW on first sight and UPDATED when any of
// title, category, or content changed on a later ingest.
const (
	StateNew     State = "NEW"
	StateUpdated State = "UPDATED"
)

// ParseState maps a wire/storage string to a State.
// "UPDATE" is accepted as a legacy spelling of UPDATED.
func ParseState(s string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEW":
		return StateNew, nil
	case "UPDATED", "UPDATE":
		return StateUpdated, nil
	}
	return "", perr.Validationf("unknown notice state %q", s)
}

// String implements fmt.Stringer
func (s State) String() string { return string(s) }

// Audit carries row audit timestamps shared by all tables
type Audit struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Notice is a stored board notice
type Notice struct {
	ID        int64      `json:"id"`
	Num       int64      `json:"num"`
	Category  Category   `json:"category"`
	Link      string     `json:"link"`
	Title     string     `json:"title"`
	Content   *string    `json:"content,omitempty"`
	CreatedAt time.Time  `json:"created_at"` // board-side publication time
	Status    State      `json:"status"`
	SavedAt   time.Time  `json:"saved_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Changed reports whether the incoming fields differ from the stored notice.
// Only title, category, and content participate in change detection; link and
// created_at edits on the board do not re-trigger delivery.
func (n Notice) Changed(title string, category Category, content *string) bool {
	if n.Title != title {
		return true
	}
	if n.Category != category {
		return true
	}
	return !equalContent(n.Content, content)
}

func equalContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
