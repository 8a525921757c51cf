package books

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBook(authorID int, title string, published time.Time) *models.Book {
	return &models.Book{
		Title:       title,
		AuthorID:    authorID,
		PublishDate: published,
		PageCount:   ptrInt(100),
	}
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	book := newBook(env.herbert.ID, "Dune", time.Date(1965, time.August, 1, 15, 30, 0, 0, time.FixedZone("EST", -5*3600)))
	err := env.books.CreateBook(ctx, book)
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.False(t, book.CreatedAt.IsZero())
	assert.True(t, time.Date(1965, time.August, 1, 0, 0, 0, 0, time.UTC).Equal(book.PublishDate), book.PublishDate.String())

	t.Run("title is required", func(tt *testing.T) {
		err := env.books.CreateBook(ctx, newBook(env.herbert.ID, "", time.Now()))
		require.Error(tt, err)
		assert.Equal(tt, `"title" is required`, err.Error())
	})

	t.Run("page count can't be negative", func(tt *testing.T) {
		b := newBook(env.herbert.ID, "Dune", time.Now())
		b.PageCount = ptrInt(-1)
		err := env.books.CreateBook(ctx, b)
		require.Error(tt, err)
		assert.True(tt, errcodes.IsCode(err, "validation_error"))
	})

	t.Run("page count is required", func(tt *testing.T) {
		b := newBook(env.herbert.ID, "Dune", time.Now())
		b.PageCount = nil
		err := env.books.CreateBook(ctx, b)
		assert.EqualError(tt, err, `"page_count" is required`)
	})

	t.Run("publish date is required", func(tt *testing.T) {
		err := env.books.CreateBook(ctx, newBook(env.herbert.ID, "Dune", time.Time{}))
		assert.EqualError(tt, err, `"publish_date" is required`)
	})

	t.Run("author must exist", func(tt *testing.T) {
		err := env.books.CreateBook(ctx, newBook(9999, "Dune", time.Now()))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "existing author")
	})

	t.Run("cover type is required with a cover name", func(tt *testing.T) {
		b := newBook(env.herbert.ID, "Dune", time.Now())
		b.CoverImageName = ptrString("abc.png")
		err := env.books.CreateBook(ctx, b)
		assert.EqualError(tt, err, `"cover_image_type" is required when cover_image_name is set`)
	})
}

func TestRetrieveBook(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	book := newBook(env.herbert.ID, "Dune", time.Now())
	require.NoError(t, env.books.CreateBook(ctx, book))

	found, err := env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Title)
	assert.Nil(t, found.Author)

	found, err = env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID, WithAuthor: true})
	require.NoError(t, err)
	require.NotNil(t, found.Author)
	assert.Equal(t, "Frank Herbert", found.Author.Name)

	missing := book.ID + 1
	_, err = env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &missing})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	base := time.Now()
	for i, title := range []string{"First", "Second", "Third"} {
		b := newBook(env.herbert.ID, title, time.Date(2000+i, time.January, 1, 0, 0, 0, 0, time.UTC))
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, env.books.CreateBook(ctx, b))
	}

	books, err := env.books.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, titles(books))

	books, err = env.books.ListBooks(ctx, ListBooksOptions{NewestFirst: true, Limit: ptrInt(2), WithAuthor: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second"}, titles(books))
	require.NotNil(t, books[0].Author)
	assert.Equal(t, "Frank Herbert", books[0].Author.Name)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	book := newBook(env.herbert.ID, "Dune", time.Now())
	require.NoError(t, env.books.CreateBook(ctx, book))

	book.Title = "Dune Messiah"
	book.AuthorID = env.asimov.ID
	err := env.books.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title"}})
	require.NoError(t, err)

	found, err := env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", found.Title)
	assert.Equal(t, env.herbert.ID, found.AuthorID, "only listed columns are written")

	t.Run("no columns is a no-op", func(tt *testing.T) {
		assert.NoError(tt, env.books.UpdateBook(ctx, &models.Book{}, UpdateBookOptions{}))
	})

	t.Run("invalid books are rejected", func(tt *testing.T) {
		book.Title = ""
		err := env.books.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title"}})
		assert.EqualError(tt, err, `"title" is required`)
	})

	t.Run("missing books are not found", func(tt *testing.T) {
		ghost := newBook(env.herbert.ID, "Ghost", time.Now())
		ghost.ID = 9999
		err := env.books.UpdateBook(ctx, ghost, UpdateBookOptions{Columns: []string{"title"}})
		assert.ErrorIs(tt, err, errcodes.NotFound("Book"))
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	book := newBook(env.herbert.ID, "Dune", time.Now())
	require.NoError(t, env.books.CreateBook(ctx, book))

	require.NoError(t, env.books.DeleteBook(ctx, book.ID))

	_, err := env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))

	err = env.books.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}
