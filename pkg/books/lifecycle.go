package books

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/covers"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/htmlutil"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/saga"
)

const (
	ViewIndex = "books/index"
	ViewShow  = "books/show"
	ViewNew   = "books/new"
	ViewEdit  = "books/edit"

	errorRemovingBook = "Could not remove book"
)

// Repository is the persistence the lifecycle manager needs.
type Repository interface {
	CreateBook(ctx context.Context, book *models.Book) error
	RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error)
	ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error
	DeleteBook(ctx context.Context, bookID int) error
}

// CoverStore is the subset of the cover store used by the lifecycle manager.
type CoverStore interface {
	Store(ctx context.Context, r io.Reader, mimeType string) (string, error)
	StoreInline(ctx context.Context, book *models.Book, raw string) error
	Delete(ctx context.Context, name string) error
}

// Result is the outcome of a lifecycle operation. Either View is rendered
// with Data, or the client is redirected to Redirect.
type Result struct {
	Status   int
	View     string
	Data     interface{}
	Redirect string
}

func (r Result) IsRedirect() bool {
	return r.Redirect != ""
}

func render(view string, data interface{}) Result {
	return Result{Status: http.StatusOK, View: view, Data: data}
}

func renderError(status int, view string, data interface{}) Result {
	return Result{Status: status, View: view, Data: data}
}

func redirect(to string) Result {
	return Result{Status: http.StatusFound, Redirect: to}
}

// Fields are the editable book attributes as submitted by the form.
type Fields struct {
	Title       string
	AuthorID    string
	PublishDate string
	PageCount   string
	Description string
}

// Upload is a cover file submitted with the create form.
type Upload struct {
	Reader   io.Reader
	MimeType string
}

type IndexData struct {
	Books    []*models.Book
	Criteria Criteria
}

type ShowData struct {
	Book         *models.Book
	ErrorMessage string
}

// Manager runs the book lifecycle operations. Every operation reports its
// outcome as a Result and never returns an error.
type Manager struct {
	books  Repository
	covers CoverStore
	forms  *FormAdapter
}

func NewManager(books Repository, authors AuthorLister, coverStore CoverStore) *Manager {
	return &Manager{
		books:  books,
		covers: coverStore,
		forms:  NewFormAdapter(authors),
	}
}

// Recent lists the most recently created books. Failures degrade to an empty
// list.
func (m *Manager) Recent(ctx context.Context, limit int) []*models.Book {
	books, err := m.books.ListBooks(ctx, ListBooksOptions{
		Limit:       &limit,
		WithAuthor:  true,
		NewestFirst: true,
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Error("recent books lookup failed")
		return []*models.Book{}
	}
	return books
}

func (m *Manager) List(ctx context.Context, criteria Criteria) Result {
	log := logger.FromContext(ctx)

	q, err := BuildQuery(criteria)
	if err != nil {
		log.Err(err).Warn("invalid book search criteria")
		return redirect("/")
	}

	books, err := m.books.ListBooks(ctx, ListBooksOptions{Query: q})
	if err != nil {
		log.Err(err).Error("book search failed")
		return redirect("/")
	}

	return render(ViewIndex, IndexData{Books: books, Criteria: criteria})
}

func (m *Manager) GetForDisplay(ctx context.Context, id int) Result {
	book, err := m.fetch(ctx, id, true)
	if err != nil {
		return redirect("/")
	}
	return render(ViewShow, ShowData{Book: book})
}

func (m *Manager) New(ctx context.Context) Result {
	return m.forms.Render(ctx, &models.Book{}, ModeNew, false)
}

// Create stores the uploaded cover, if any, and then persists the book. When
// persisting fails the stored cover is removed again so no blob is left
// without a book.
func (m *Manager) Create(ctx context.Context, fields Fields, upload *Upload) Result {
	log := logger.FromContext(ctx)
	book := &models.Book{}
	fieldsErr := applyFields(book, fields)

	var storedName string
	s := saga.New().
		AddStep("store cover", func(ctx context.Context) error {
			if upload == nil || upload.Reader == nil {
				return nil
			}
			if !covers.IsAcceptedType(upload.MimeType) {
				log.Debug("ignoring cover with unsupported type", logger.Data{"type": upload.MimeType})
				return nil
			}
			name, err := m.covers.Store(ctx, upload.Reader, upload.MimeType)
			if err != nil {
				return err
			}
			storedName = name
			mimeType := upload.MimeType
			book.CoverImageName = &storedName
			book.CoverImageType = &mimeType
			return nil
		}, func(ctx context.Context) error {
			if storedName == "" {
				return nil
			}
			book.CoverImageName = nil
			book.CoverImageType = nil
			return m.covers.Delete(ctx, storedName)
		}).
		AddStep("persist book", func(ctx context.Context) error {
			if fieldsErr != nil {
				return fieldsErr
			}
			return m.books.CreateBook(ctx, book)
		}, nil)

	if err := s.Execute(ctx); err != nil {
		log.Err(err).Warn("book create failed")
		book.ID = 0
		return m.forms.Render(ctx, book, ModeNew, true)
	}

	log.Info("book created", logger.Data{"book_id": book.ID})
	return redirect(bookPath(book.ID))
}

// RejectCreate answers a create whose submission could not be read. The new
// form is shown again with the create error.
func (m *Manager) RejectCreate(ctx context.Context, err error) Result {
	logger.FromContext(ctx).Err(err).Warn("book create payload rejected")
	return m.forms.Render(ctx, &models.Book{}, ModeNew, true)
}

func (m *Manager) GetForEdit(ctx context.Context, id int) Result {
	book, err := m.fetch(ctx, id, false)
	if err != nil {
		return redirect("/")
	}
	return m.forms.Render(ctx, book, ModeEdit, false)
}

// Update overwrites the editable fields and, when inlineCover is set, stores
// the re-submitted cover before persisting. A newly stored cover is removed
// if persisting fails. The cover it replaces is removed once the update has
// been saved.
func (m *Manager) Update(ctx context.Context, id int, fields Fields, inlineCover string) Result {
	log := logger.FromContext(ctx)

	book, err := m.fetch(ctx, id, false)
	if err != nil {
		return redirect("/")
	}

	previousName := book.CoverImageName
	previousType := book.CoverImageType
	fieldsErr := applyFields(book, fields)

	var storedName string
	s := saga.New().
		AddStep("store inline cover", func(ctx context.Context) error {
			if strings.TrimSpace(inlineCover) == "" {
				return nil
			}
			if err := m.covers.StoreInline(ctx, book, inlineCover); err != nil {
				return err
			}
			storedName = *book.CoverImageName
			return nil
		}, func(ctx context.Context) error {
			if storedName == "" {
				return nil
			}
			book.CoverImageName = previousName
			book.CoverImageType = previousType
			return m.covers.Delete(ctx, storedName)
		}).
		AddStep("persist book", func(ctx context.Context) error {
			if fieldsErr != nil {
				return fieldsErr
			}
			return m.books.UpdateBook(ctx, book, UpdateBookOptions{Columns: editableColumns})
		}, nil)

	if err := s.Execute(ctx); err != nil {
		log.Err(err).Warn("book update failed", logger.Data{"book_id": book.ID})
		return m.forms.Render(ctx, book, ModeEdit, true)
	}

	if storedName != "" && previousName != nil && *previousName != storedName {
		if err := m.covers.Delete(ctx, *previousName); err != nil {
			log.Err(err).Warn("replaced cover could not be removed", logger.Data{"book_id": book.ID, "name": *previousName})
		}
	}

	log.Info("book updated", logger.Data{"book_id": book.ID})
	return redirect(bookPath(book.ID))
}

// RejectUpdate answers an update whose submission could not be read. A book
// that can't be fetched still redirects to the root.
func (m *Manager) RejectUpdate(ctx context.Context, id int, err error) Result {
	book, ferr := m.fetch(ctx, id, false)
	if ferr != nil {
		return redirect("/")
	}
	logger.FromContext(ctx).Err(err).Warn("book update payload rejected", logger.Data{"book_id": book.ID})
	return m.forms.Render(ctx, book, ModeEdit, true)
}

// Delete removes the book record. Its cover blob is kept.
func (m *Manager) Delete(ctx context.Context, id int) Result {
	log := logger.FromContext(ctx)

	book, err := m.fetch(ctx, id, true)
	if err != nil {
		return redirect("/")
	}

	if err := m.books.DeleteBook(ctx, book.ID); err != nil {
		log.Err(err).Error("book delete failed", logger.Data{"book_id": book.ID})
		return renderError(http.StatusInternalServerError, ViewShow, ShowData{Book: book, ErrorMessage: errorRemovingBook})
	}

	log.Info("book deleted", logger.Data{"book_id": book.ID})
	return redirect("/books")
}

func (m *Manager) fetch(ctx context.Context, id int, withAuthor bool) (*models.Book, error) {
	book, err := m.books.RetrieveBook(ctx, RetrieveBookOptions{ID: &id, WithAuthor: withAuthor})
	if err != nil {
		log := logger.FromContext(ctx)
		if errors.Is(err, errcodes.NotFound("Book")) {
			log.Debug("book not found", logger.Data{"book_id": id})
		} else {
			log.Err(err).Error("book lookup failed", logger.Data{"book_id": id})
		}
		return nil, err
	}
	return book, nil
}

var editableColumns = []string{
	"title",
	"author_id",
	"publish_date",
	"page_count",
	"description",
	"cover_image_name",
	"cover_image_type",
}

// applyFields copies the submitted fields onto book. Every field is applied
// even when an earlier one is malformed, so the form can be re-rendered with
// what was entered. The first conversion failure is returned.
func applyFields(book *models.Book, fields Fields) error {
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	book.Title = strings.TrimSpace(fields.Title)

	book.AuthorID = 0
	if v := strings.TrimSpace(fields.AuthorID); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			fail(errcodes.ValidationTypeError(`"author_id" should be of type int`))
		} else {
			book.AuthorID = id
		}
	}

	book.PublishDate = time.Time{}
	if v := strings.TrimSpace(fields.PublishDate); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			fail(errcodes.ValidationError(`"publish_date" should be in the format of YYYY-MM-DD`))
		} else {
			book.PublishDate = t
		}
	}

	book.PageCount = nil
	if v := strings.TrimSpace(fields.PageCount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(errcodes.ValidationTypeError(`"page_count" should be of type int`))
		} else {
			book.PageCount = &n
		}
	}

	book.Description = nil
	if v := htmlutil.StripTags(fields.Description); v != "" {
		book.Description = &v
	}

	return firstErr
}

func bookPath(id int) string {
	return fmt.Sprintf("/books/%d", id)
}
