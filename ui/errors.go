package ui

import (
	stderrors "errors"
	"net/http"

	"nuanswers/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error code to an HTTP status
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.GetCode(err) {
	case errors.CodeValidationError, errors.CodeExtraction:
		return http.StatusUnprocessableEntity
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.CodePersistence, errors.CodeConfigInvalid:
		return http.StatusServiceUnavailable
	case errors.CodeExternalService:
		return http.StatusBadGateway
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeInvalidState:
		return http.StatusConflict
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response
func errorBody(err error) gin.H {
	body := gin.H{
		"error": errors.UserMessage(err),
		"code":  errors.GetCode(err),
	}
	if fields := errors.FieldErrors(err); len(fields) > 0 {
		body["fields"] = fields
	}
	return body
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.logger.Debug("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, errorBody(err))
}

// wantsHTML reports whether the client is a browser form rather than a script
func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
