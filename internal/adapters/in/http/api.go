package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (PATCH /api/v1/projects/{projectId}/production-status)
	AdvanceProduction(ctx echo.Context, projectID openapi_types.UUID) error
	// (GET /api/v1/projects/{projectId}/cancellation-preview)
	PreviewCancellation(ctx echo.Context, projectID openapi_types.UUID) error
	// (PATCH /api/v1/projects/{projectId}/cancel)
	CancelProject(ctx echo.Context, projectID openapi_types.UUID) error
	// (PATCH /api/v1/projects/{projectId}/materials)
	DeclareMaterialCost(ctx echo.Context, projectID openapi_types.UUID) error
	// (GET /api/v1/projects/{projectId}/progress)
	GetProgress(ctx echo.Context, projectID openapi_types.UUID) error
}

// ServerInterfaceWrapper binds path parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type operation func(ServerInterface, echo.Context, openapi_types.UUID) error

func (w *ServerInterfaceWrapper) withProjectID(op operation) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var projectID openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", "projectId", ctx.Param("projectId"), &projectID,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter projectId: %s", err))
		}
		return op(w.Handler, ctx, projectID)
	}
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts every operation under baseURL. Routes are relative
// to /api/v1, so a router that is not already scoped passes "/api/v1".
func RegisterHandlers(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.PATCH(baseURL+"/projects/:projectId/production-status", w.withProjectID(ServerInterface.AdvanceProduction))
	router.GET(baseURL+"/projects/:projectId/cancellation-preview", w.withProjectID(ServerInterface.PreviewCancellation))
	router.PATCH(baseURL+"/projects/:projectId/cancel", w.withProjectID(ServerInterface.CancelProject))
	router.PATCH(baseURL+"/projects/:projectId/materials", w.withProjectID(ServerInterface.DeclareMaterialCost))
	router.GET(baseURL+"/projects/:projectId/progress", w.withProjectID(ServerInterface.GetProgress))
}
