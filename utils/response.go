package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope is the body every API endpoint answers with. RequestID echoes the
// X-Request-ID so a failed call can be found in app.log.
type Envelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func envelope(c *gin.Context, status, message string, data interface{}) Envelope {
	return Envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	}
}

// Success sends a 200 with data
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, statusSuccess, message, data))
}

// Created sends a 201 with data
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, envelope(c, statusSuccess, message, data))
}

// Error sends an error envelope; detail, when set, is reported under data.error
func Error(c *gin.Context, statusCode int, message string, detail interface{}) {
	var data interface{}
	if detail != nil {
		data = gin.H{"error": detail}
	}
	c.JSON(statusCode, envelope(c, statusError, message, data))
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string, detail interface{}) {
	Error(c, http.StatusBadRequest, message, detail)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// RespondError writes err using the status and message of its AppError.
// Errors without one are reported as a generic 500 and their text is kept
// out of the response.
func RespondError(c *gin.Context, err error) {
	appErr := GetAppError(err)
	if appErr == nil {
		LogError("Unhandled error: %v", err)
		Error(c, http.StatusInternalServerError, ErrInternalServer, nil)
		return
	}
	if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
		LogError("%s (request %s): %v", appErr.Message, c.GetString(RequestIDKey), appErr.Err)
	}
	Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
}
