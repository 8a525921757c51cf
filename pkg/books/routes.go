package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/authors"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/covers"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the root page and the book routes. PUT and DELETE
// are expected to arrive through the method override middleware.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, coverStore *covers.Store) {
	bookService := NewService(db)
	authorService := authors.NewService(db)

	h := &handler{
		manager:     NewManager(bookService, authorService, coverStore),
		recentLimit: cfg.RecentBooksLimit,
	}

	e.GET("/", h.root)

	g := e.Group("/books")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/new", h.new)
	g.GET("/:id", h.show)
	g.GET("/:id/edit", h.edit)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
