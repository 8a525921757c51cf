package books

import (
	"context"
	"net/http"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/models"
)

type Mode string

const (
	ModeNew  Mode = "new"
	ModeEdit Mode = "edit"
)

var formErrorMessages = map[Mode]string{
	ModeNew:  "Error creating Book",
	ModeEdit: "Error editing Book",
}

// AuthorLister supplies the author choices shown on book forms.
type AuthorLister interface {
	ListAuthors(ctx context.Context) ([]*models.Author, error)
}

type FormData struct {
	Mode         Mode
	Authors      []*models.Author
	Book         *models.Book
	ErrorMessage string
}

// FormAdapter builds the payload for the new and edit book forms.
type FormAdapter struct {
	authors AuthorLister
}

func NewFormAdapter(authors AuthorLister) *FormAdapter {
	return &FormAdapter{authors}
}

// Render returns the form view for mode. When the author list can't be
// loaded the client is sent back to the book list instead.
func (f *FormAdapter) Render(ctx context.Context, book *models.Book, mode Mode, hasError bool) Result {
	authors, err := f.authors.ListAuthors(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Error("author list lookup failed")
		return redirect("/books")
	}

	data := FormData{
		Mode:    mode,
		Authors: authors,
		Book:    book,
	}
	if !hasError {
		return render(viewForMode(mode), data)
	}
	data.ErrorMessage = formErrorMessages[mode]
	return renderError(http.StatusUnprocessableEntity, viewForMode(mode), data)
}

func viewForMode(mode Mode) string {
	return "books/" + string(mode)
}
