package covers

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, store *Store) {
	h := &handler{store}

	e.GET("/covers/:name", h.serve)
}
