package covers

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
)

type handler struct {
	store *Store
}

func (h *handler) serve(c echo.Context) error {
	path, err := h.store.Path(c.Param("name"))
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := os.Stat(path); err != nil {
		return errcodes.NotFound("Cover")
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return errors.WithStack(c.File(path))
}
