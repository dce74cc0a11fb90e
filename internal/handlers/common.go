// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devmarket/devmarket-backend/internal/services"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP responses.
// Anything outside the taxonomy is a 500 and gets logged.
func handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
		return
	}

	switch services.KindOf(err) {
	case services.KindNotFound:
		utils.ErrorResponse(c, 404, "NOT_FOUND", err.Error(), nil)
	case services.KindForbidden:
		utils.ForbiddenResponse(c, err.Error())
	case services.KindConflict:
		utils.ConflictResponse(c, err.Error())
	case services.KindExpired:
		utils.ExpiredResponse(c, err.Error())
	case services.KindValidation:
		utils.BadRequestResponse(c, err.Error(), nil)
	case services.KindTooMany:
		utils.ErrorResponse(c, 429, "TOO_MANY_REQUESTS", err.Error(), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}

// currentUserID reads the authenticated user out of the gin context. Routes
// behind AuthRequired always have it.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	return id, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
