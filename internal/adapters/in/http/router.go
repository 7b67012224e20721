package http

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// NewRouter wires the API onto a fresh echo instance. /health and /swagger
// stay public; everything under /api requires a bearer token and a request
// that matches doc.
func NewRouter(server *Server, auth AuthConfig, doc *openapi3.T, logger *zap.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	if err := registerSwagger(doc); err != nil {
		return nil, err
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	api := e.Group("/api/v1", RequestLogger(logger), JWTAuth(auth), validate)
	RegisterHandlers(api, server, "")

	return e, nil
}
