// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"carlisting_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success sends a 200 OK response with only a message.
func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Message: message})
}

// SuccessWithData sends a 200 OK response with a message and payload.
// A nil payload is serialized as an absent data field, matching the
// empty-result behavior of detail lookups.
func SuccessWithData(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: message, Data: data})
}

// Created sends a 201 Created response with a message and payload.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Message: message, Data: data})
}

// ValidationError sends a 400 response carrying every failing field.
func ValidationError(c *gin.Context, message string, fieldErrors interface{}) {
	c.JSON(http.StatusBadRequest, Response{Message: message, Errors: fieldErrors})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Message: message})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Message: message})
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, errors interface{}) {
	c.JSON(status, Response{Message: message, Errors: errors})
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, its Kind determines the status
// code. Storage, database and internal errors are collapsed into a generic
// message so no raw failure detail reaches the client; callers are expected
// to log the underlying error before returning it.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		message := domainErr.Message
		details := domainErr.Details
		switch domainErr.Kind {
		case apperr.KindStorage, apperr.KindDatabase, apperr.KindInternal:
			message = "Internal server error."
			details = nil
		}
		c.JSON(domainErr.HTTPStatus(), Response{Message: message, Errors: details})
		return true
	}

	// Fallback for non-typed errors.
	c.JSON(http.StatusInternalServerError, Response{Message: "Internal server error."})
	return true
}
