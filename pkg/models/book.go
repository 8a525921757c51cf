package models

import (
	"time"

	"github.com/uptrace/bun"
)

const coverImageBasePath = "/covers"

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b" tstype:"-"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Title          string    `bun:",nullzero" json:"title" validate:"required,max=300"`
	TitleSearch    string    `bun:",nullzero" json:"-" validate:"-"`
	AuthorID       int       `bun:",nullzero" json:"author_id" validate:"required,min=1"`
	Author         *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty" validate:"-"`
	PublishDate    time.Time `json:"publish_date" validate:"required"`
	PageCount      *int      `json:"page_count" validate:"required,min=0"`
	Description    *string   `json:"description"`
	CoverImageName *string   `json:"cover_image_name"`
	CoverImageType *string   `json:"cover_image_type" validate:"required_with=CoverImageName"`
}

// CoverImagePath returns the URL the cover is served from, or the empty string
// when the book has no cover.
func (b *Book) CoverImagePath() string {
	if b.CoverImageName == nil || *b.CoverImageName == "" {
		return ""
	}
	return coverImageBasePath + "/" + *b.CoverImageName
}

// FormattedPublishDate is the publish date in the format date inputs expect.
func (b *Book) FormattedPublishDate() string {
	if b.PublishDate.IsZero() {
		return ""
	}
	return b.PublishDate.Format(time.DateOnly)
}
