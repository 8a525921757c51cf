package books

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/shishobooks/catalog/pkg/authors"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/covers"
	"github.com/shishobooks/catalog/pkg/database"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

type testEnv struct {
	db      *bun.DB
	books   *Service
	authors *authors.Service
	covers  *covers.Store
	manager *Manager
	herbert *models.Author
	asimov  *models.Author
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db := setupTestDB(t)
	env := &testEnv{
		db:      db,
		books:   NewService(db),
		authors: authors.NewService(db),
		covers:  covers.NewStore(t.TempDir()),
	}
	env.manager = NewManager(env.books, env.authors, env.covers)

	env.herbert = &models.Author{Name: "Frank Herbert"}
	require.NoError(t, env.authors.CreateAuthor(ctx, env.herbert))
	env.asimov = &models.Author{Name: "Isaac Asimov"}
	require.NoError(t, env.authors.CreateAuthor(ctx, env.asimov))

	return env
}

func (env *testEnv) duneFields() Fields {
	return Fields{
		Title:       "Dune",
		AuthorID:    strconv.Itoa(env.herbert.ID),
		PublishDate: "1965-08-01",
		PageCount:   "412",
		Description: "<p>Spice &amp; sand</p>",
	}
}

func (env *testEnv) foundationFields() Fields {
	return Fields{
		Title:       "Foundation",
		AuthorID:    strconv.Itoa(env.asimov.ID),
		PublishDate: "1951-06-01",
		PageCount:   "255",
	}
}

// createBook runs a successful create and returns the stored book.
func (env *testEnv) createBook(t *testing.T, fields Fields, upload *Upload) *models.Book {
	t.Helper()
	ctx := context.Background()

	res := env.manager.Create(ctx, fields, upload)
	require.True(t, res.IsRedirect(), "create should redirect, got view %q", res.View)

	id, err := strconv.Atoi(res.Redirect[len("/books/"):])
	require.NoError(t, err)

	book, err := env.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &id, WithAuthor: true})
	require.NoError(t, err)
	return book
}

func (env *testEnv) blobs(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(env.covers.Dir())
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func titles(books []*models.Book) []string {
	out := []string{}
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func ptrString(s string) *string {
	return &s
}

func ptrInt(i int) *int {
	return &i
}
