package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

func (s *Server) success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *Server) error(c *gin.Context, status int, message string, details gin.H) {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.JSON(status, body)
}

// writeError maps service errors onto HTTP statuses
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		validationErr *model.ValidationError
		fulfilledErr  *model.AlreadyFulfilledError
		conflictErr   *model.ConflictError
		transitionErr *model.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		s.error(c, http.StatusBadRequest, validationErr.Error(), gin.H{"field": validationErr.Field})
	case errors.Is(err, db.ErrNotFound):
		s.error(c, http.StatusNotFound, "not found", nil)
	case errors.As(err, &fulfilledErr):
		s.error(c, http.StatusConflict, fulfilledErr.Error(), gin.H{"requestId": fulfilledErr.RequestID})
	case errors.As(err, &conflictErr):
		s.error(c, http.StatusConflict, conflictErr.Error(), gin.H{
			"employeeId": conflictErr.EmployeeID,
			"date":       conflictErr.Date.Format(model.DateLayout),
			"reason":     conflictErr.Reason,
		})
	case errors.As(err, &transitionErr):
		s.error(c, http.StatusUnprocessableEntity, transitionErr.Error(), gin.H{
			"entity": transitionErr.Entity,
			"from":   transitionErr.From,
			"to":     transitionErr.To,
		})
	default:
		s.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		s.error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
