package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/shishobooks/catalog/pkg/models"
)

const (
	ViewRoot = "index"

	coverField = "cover"
)

type RootData struct {
	Books []*models.Book
}

type handler struct {
	manager     *Manager
	recentLimit int
}

func (h *handler) root(c echo.Context) error {
	books := h.manager.Recent(c.Request().Context(), h.recentLimit)
	return errors.WithStack(c.Render(http.StatusOK, ViewRoot, RootData{Books: books}))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	criteria := Criteria{}
	if err := c.Bind(&criteria); err != nil {
		logger.FromEchoContext(c).Err(err).Warn("invalid book search params")
		return respond(c, redirect("/"))
	}

	return respond(c, h.manager.List(ctx, criteria))
}

func (h *handler) new(c echo.Context) error {
	return respond(c, h.manager.New(c.Request().Context()))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromEchoContext(c)

	params := BookFormPayload{}
	if err := c.Bind(&params); err != nil {
		return respond(c, h.manager.RejectCreate(ctx, err))
	}

	var upload *Upload
	if fh, ok := params.FormFiles[coverField]; ok && fh.Filename != "" && fh.Size > 0 {
		file, err := fh.Open()
		if err != nil {
			log.Err(err).Warn("cover upload could not be opened")
		} else {
			defer file.Close()
			upload = &Upload{
				Reader:   file,
				MimeType: fh.Header.Get(echo.HeaderContentType),
			}
		}
	}

	return respond(c, h.manager.Create(ctx, params.fields(), upload))
}

func (h *handler) show(c echo.Context) error {
	return respond(c, h.manager.GetForDisplay(c.Request().Context(), paramID(c)))
}

func (h *handler) edit(c echo.Context) error {
	return respond(c, h.manager.GetForEdit(c.Request().Context(), paramID(c)))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id := paramID(c)

	params := BookFormPayload{}
	if err := c.Bind(&params); err != nil {
		return respond(c, h.manager.RejectUpdate(ctx, id, err))
	}

	return respond(c, h.manager.Update(ctx, id, params.fields(), params.Cover))
}

func (h *handler) delete(c echo.Context) error {
	return respond(c, h.manager.Delete(c.Request().Context(), paramID(c)))
}

func respond(c echo.Context, r Result) error {
	if r.IsRedirect() {
		return errors.WithStack(c.Redirect(http.StatusFound, r.Redirect))
	}
	return errors.WithStack(c.Render(r.Status, r.View, r.Data))
}

// paramID returns the :id path parameter. Anything that isn't a positive
// integer maps to 0, which no book has.
func paramID(c echo.Context) int {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return 0
	}
	return id
}
