package books

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID         *int
	WithAuthor bool
}

type ListBooksOptions struct {
	Query      *Query
	Limit      *int
	WithAuthor bool
	// NewestFirst orders by creation time descending instead of by id.
	NewestFirst bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	if err := svc.validateBook(ctx, book); err != nil {
		return err
	}

	book.TitleSearch = foldTitle(book.Title)
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.WithAuthor {
		q = q.Relation("Author")
	}
	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books)

	if opts.WithAuthor {
		q = q.Relation("Author")
	}
	q = opts.Query.Apply(q)
	if opts.NewestFirst {
		q = q.Order("b.created_at DESC", "b.id DESC")
	} else {
		q = q.Order("b.id ASC")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	if err := svc.validateBook(ctx, book); err != nil {
		return err
	}

	columns := make([]string, 0, len(opts.Columns)+2)
	columns = append(columns, opts.Columns...)
	if slices.Contains(columns, "title") {
		book.TitleSearch = foldTitle(book.Title)
		columns = append(columns, "title_search")
	}

	book.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// validateBook checks the struct rules on the model and that the referenced
// author exists. Publish dates are normalized to midnight UTC so date range
// filters compare whole days.
func (svc *Service) validateBook(ctx context.Context, book *models.Book) error {
	if !book.PublishDate.IsZero() {
		y, m, d := book.PublishDate.Date()
		book.PublishDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if err := binder.ValidateStruct(book); err != nil {
		return err
	}

	exists, err := svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		Where("a.id = ?", book.AuthorID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.ValidationError(`"author_id" must reference an existing author`)
	}
	return nil
}
