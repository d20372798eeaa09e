package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const MaxTitleLength = 256

type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	OwnerID     string    `json:"owner_id"`
	ParentID    *string   `json:"parent_id"`
	IsArchived  bool      `json:"is_archived"`
	IsPublished bool      `json:"is_published"`
	Content     *string   `json:"content,omitempty"`
	CoverImage  *string   `json:"cover_image,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentPatch names the fields a Patch call rewrites. Nil pointers are left untouched;
// the Clear flags set the optional column back to NULL.
type DocumentPatch struct {
	Title           *string
	Content         *string
	Icon            *string
	CoverImage      *string
	IsArchived      *bool
	IsPublished     *bool
	ClearParent     bool
	ClearIcon       bool
	ClearCoverImage bool
}

func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Icon == nil && p.CoverImage == nil &&
		p.IsArchived == nil && p.IsPublished == nil &&
		!p.ClearParent && !p.ClearIcon && !p.ClearCoverImage
}

// Apply merges the patch into doc in place.
func (p DocumentPatch) Apply(doc *Document) {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Content != nil {
		doc.Content = ptr(*p.Content)
	}
	if p.Icon != nil {
		doc.Icon = ptr(*p.Icon)
	}
	if p.CoverImage != nil {
		doc.CoverImage = ptr(*p.CoverImage)
	}
	if p.IsArchived != nil {
		doc.IsArchived = *p.IsArchived
	}
	if p.IsPublished != nil {
		doc.IsPublished = *p.IsPublished
	}
	if p.ClearParent {
		doc.ParentID = nil
	}
	if p.ClearIcon {
		doc.Icon = nil
	}
	if p.ClearCoverImage {
		doc.CoverImage = nil
	}
}

type CreateDocRequest struct {
	Title    string  `json:"title"`
	ParentID *string `json:"parent_id"`
}

func (r *CreateDocRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.ParentID != nil && strings.TrimSpace(*r.ParentID) == "" {
		r.ParentID = nil
	}
}

func (r CreateDocRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
	)
}

type UpdateDocRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Icon        *string `json:"icon"`
	CoverImage  *string `json:"cover_image"`
	IsPublished *bool   `json:"is_published"`
}

func (r UpdateDocRequest) Validate() error {
	if r.Title == nil && r.Content == nil && r.Icon == nil && r.CoverImage == nil && r.IsPublished == nil {
		return validation.NewError("validation_empty_update", "at least one field must be provided")
	}
	if r.Title != nil {
		r.Title = ptr(strings.TrimSpace(*r.Title))
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxTitleLength)),
	)
}

// Patch converts the request into a repository patch.
func (r UpdateDocRequest) Patch() DocumentPatch {
	patch := DocumentPatch{
		Content:     r.Content,
		Icon:        r.Icon,
		CoverImage:  r.CoverImage,
		IsPublished: r.IsPublished,
	}
	if r.Title != nil {
		patch.Title = ptr(strings.TrimSpace(*r.Title))
	}
	return patch
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ptr[T any](v T) *T {
	return &v
}
