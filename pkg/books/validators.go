package books

import "mime/multipart"

// BookFormPayload is the body of the new and edit forms. On create the cover
// arrives as a file part. On update it arrives as the inline cover document
// in the cover field.
type BookFormPayload struct {
	Title       string `form:"title" json:"title" mod:"trim"`
	Author      string `form:"author" json:"author" mod:"trim"`
	PublishDate string `form:"publishDate" json:"publishDate" mod:"trim"`
	PageCount   string `form:"pageCount" json:"pageCount" mod:"trim"`
	Description string `form:"description" json:"description"`
	Cover       string `form:"cover" json:"cover"`

	FormFiles map[string]*multipart.FileHeader `form:"-" json:"-"`
}

func (p *BookFormPayload) fields() Fields {
	return Fields{
		Title:       p.Title,
		AuthorID:    p.Author,
		PublishDate: p.PublishDate,
		PageCount:   p.PageCount,
		Description: p.Description,
	}
}
