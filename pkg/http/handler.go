package http

import "github.com/labstack/echo/v4"

// APIPrefix is where every Handler is mounted.
const APIPrefix = "/api"

// Handler registers its routes on the API group. Paths are relative to APIPrefix.
type Handler interface {
	RegisterRoutes(g *echo.Group)
}
