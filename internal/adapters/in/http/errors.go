package http

import (
	"errors"
	"net/http"

	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"
	"flowerstand/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// writeError maps a use case error to a response. Rejections caused by the
// caller are logged at WARN, everything that points at a fault at ERROR.
func (s *Server) writeError(c echo.Context, err error) error {
	body := Error{Code: http.StatusInternalServerError, Error: "INTERNAL", Message: "internal error"}
	fault := false

	var transition *project.InvalidTransitionError
	var notFundraising *project.NotFundraisingError
	switch {
	case errors.As(err, &transition):
		body = Error{
			Code:            http.StatusConflict,
			Error:           "INVALID_TRANSITION",
			Message:         err.Error(),
			CurrentStatus:   transition.Current.String(),
			RequestedStatus: transition.Requested.String(),
		}
	case errors.Is(err, project.ErrUnauthorized):
		body = Error{Code: http.StatusForbidden, Error: "FORBIDDEN", Message: err.Error()}
	case errors.As(err, &notFundraising):
		body = Error{
			Code:          http.StatusConflict,
			Error:         "NOT_FUNDRAISING",
			Message:       err.Error(),
			FundingStatus: notFundraising.FundingStatus.String(),
		}
	case errors.Is(err, project.ErrAlreadyTerminal):
		body = Error{Code: http.StatusConflict, Error: "ALREADY_TERMINAL", Message: err.Error()}
	case errors.Is(err, project.ErrInvalidProjectState):
		fault = true
		body = Error{Code: http.StatusInternalServerError, Error: "INVALID_PROJECT_STATE", Message: "project data is inconsistent"}
	case errors.Is(err, ports.ErrConcurrentModification):
		body = Error{Code: http.StatusConflict, Error: "CONCURRENT_MODIFICATION", Message: err.Error()}
	case errors.Is(err, outbox.ErrInvalidStatusChange):
		body = Error{Code: http.StatusConflict, Error: "INVALID_STATUS", Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		body = Error{Code: http.StatusNotFound, Error: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		body = Error{Code: http.StatusBadRequest, Error: "INVALID_REQUEST", Message: err.Error()}
	default:
		fault = true
	}

	fields := []zap.Field{
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.String("project_id", c.Param("projectId")),
		zap.Int("status", body.Code),
		zap.Error(err),
	}
	if fault {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}

	return c.JSON(body.Code, body)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Error: "INVALID_REQUEST", Message: message})
}
