// Package http exposes the project use cases over a JSON API described by
// the embedded openapi.yaml.
package http

import (
	"context"
	"net/http"

	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/application/usecases/queries"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/services"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

type (
	AdvanceProductionHandler interface {
		Handle(ctx context.Context, command commands.AdvanceProductionCommand) error
	}
	CancelProjectHandler interface {
		Handle(ctx context.Context, command commands.CancelProjectCommand) (services.Settlement, error)
	}
	DeclareMaterialCostHandler interface {
		Handle(ctx context.Context, command commands.DeclareMaterialCostCommand) error
	}
	PreviewCancellationHandler interface {
		Handle(ctx context.Context, query queries.PreviewCancellationQuery) (queries.PreviewCancellationQueryResponse, error)
	}
	GetProjectProgressHandler interface {
		Handle(ctx context.Context, query queries.GetProjectProgressQuery) (queries.GetProjectProgressQueryResponse, error)
	}
)

// Handlers groups the use cases the server calls.
type Handlers struct {
	AdvanceProduction   AdvanceProductionHandler
	CancelProject       CancelProjectHandler
	DeclareMaterialCost DeclareMaterialCostHandler
	PreviewCancellation PreviewCancellationHandler
	GetProjectProgress  GetProjectProgressHandler
}

// Server implements ServerInterface. The acting user always comes from the
// bearer token; request bodies never name an actor.
type Server struct {
	handlers Handlers
	validate *validator.Validate
	logger   *zap.Logger
}

var _ ServerInterface = (*Server)(nil)

func NewServer(handlers Handlers, logger *zap.Logger) *Server {
	return &Server{
		handlers: handlers,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With(zap.String("component", "http")),
	}
}

// AdvanceProduction handles PATCH /api/v1/projects/{projectId}/production-status.
func (s *Server) AdvanceProduction(c echo.Context, projectID openapi_types.UUID) error {
	var body AdvanceProductionRequest
	if err := s.bind(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	id, actor, err := s.subject(c, projectID)
	if err != nil {
		return s.writeError(c, err)
	}

	requested, err := project.ParseProductionStatus(body.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewAdvanceProductionCommand(id, requested, actor)
	if err != nil {
		return s.writeError(c, err)
	}

	ctx := c.Request().Context()
	if err = s.handlers.AdvanceProduction.Handle(ctx, cmd); err != nil {
		return s.writeError(c, err)
	}

	return s.respondProgress(c, id)
}

// PreviewCancellation handles GET /api/v1/projects/{projectId}/cancellation-preview.
func (s *Server) PreviewCancellation(c echo.Context, projectID openapi_types.UUID) error {
	id, _, err := s.subject(c, projectID)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewPreviewCancellationQuery(id)
	if err != nil {
		return s.writeError(c, err)
	}

	preview, err := s.handlers.PreviewCancellation.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, settlementFromPreview(preview))
}

// CancelProject handles PATCH /api/v1/projects/{projectId}/cancel.
func (s *Server) CancelProject(c echo.Context, projectID openapi_types.UUID) error {
	id, actor, err := s.subject(c, projectID)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewCancelProjectCommand(id, actor)
	if err != nil {
		return s.writeError(c, err)
	}

	result, err := s.handlers.CancelProject.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	s.logger.Info("project cancelled",
		zap.String("project_id", id.String()),
		zap.String("actor_id", actor.ID().String()),
		zap.String("tier", result.Estimate.Tier().String()),
		zap.Int64("refund_amount", result.Estimate.RefundAmount()),
	)
	return c.JSON(http.StatusOK, settlementFromCancel(id, result))
}

// DeclareMaterialCost handles PATCH /api/v1/projects/{projectId}/materials.
func (s *Server) DeclareMaterialCost(c echo.Context, projectID openapi_types.UUID) error {
	var body DeclareMaterialCostRequest
	if err := s.bind(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	id, actor, err := s.subject(c, projectID)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewDeclareMaterialCostCommand(id, actor, *body.MaterialCost, body.MaterialDescription)
	if err != nil {
		return s.writeError(c, err)
	}

	if err = s.handlers.DeclareMaterialCost.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetProgress handles GET /api/v1/projects/{projectId}/progress.
func (s *Server) GetProgress(c echo.Context, projectID openapi_types.UUID) error {
	id, _, err := s.subject(c, projectID)
	if err != nil {
		return s.writeError(c, err)
	}
	return s.respondProgress(c, id)
}

func (s *Server) respondProgress(c echo.Context, id kernel.UUID) error {
	query, err := queries.NewGetProjectProgressQuery(id)
	if err != nil {
		return s.writeError(c, err)
	}

	progress, err := s.handlers.GetProjectProgress.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, progressFromQuery(progress))
}

func (s *Server) bind(c echo.Context, body any) error {
	if err := c.Bind(body); err != nil {
		return err
	}
	return s.validate.Struct(body)
}

func (s *Server) subject(c echo.Context, projectID openapi_types.UUID) (kernel.UUID, kernel.Actor, error) {
	id, err := kernel.UUIDFromString(projectID.String())
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, err
	}
	actor, err := ActorFrom(c)
	if err != nil {
		return kernel.UUID{}, kernel.Actor{}, err
	}
	return id, actor, nil
}
