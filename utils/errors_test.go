package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorChain(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := TransientError(ErrServiceUnavailable, cause)
	wrapped := fmt.Errorf("confirm: %w", appErr)

	assert.Same(t, appErr, GetAppError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsKind(wrapped, KindTransient))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(cause, KindTransient))
	assert.Equal(t, "Service unavailable, please retry: connection refused", appErr.Error())
	assert.Nil(t, GetAppError(cause))
}

func TestWithStatusKeepsKind(t *testing.T) {
	conflict := ConflictError(ErrPaymentProcessed, nil)
	reported := conflict.WithStatus(http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, reported.Code)
	assert.Equal(t, KindConflict, reported.Kind)
	assert.Equal(t, http.StatusConflict, conflict.Code, "original must be untouched")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ctx"))

	base := errors.New("base")
	err := WrapError(base, "loading project")
	assert.EqualError(t, err, "loading project: base")
	assert.ErrorIs(t, err, base)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantKind string
	}{
		{"invalid argument", InvalidArgumentError(ErrInvalidDuration, nil), http.StatusBadRequest, ErrInvalidDuration, "invalid_argument"},
		{"not found", NotFoundError(ErrProjectNotFound, nil), http.StatusNotFound, ErrProjectNotFound, "not_found"},
		{"bad signature", AuthenticationFailedError(ErrInvalidSignature, nil), http.StatusBadRequest, ErrInvalidSignature, "authentication_failed"},
		{"upstream", UpstreamError("Failed to create payment order: timeout", nil), http.StatusInternalServerError, "Failed to create payment order: timeout", "upstream_error"},
		{"transient", fmt.Errorf("wrapped: %w", TransientError(ErrServiceUnavailable, nil)), http.StatusServiceUnavailable, ErrServiceUnavailable, "transient_error"},
		{"plain error", errors.New("unexpected"), http.StatusInternalServerError, ErrInternalServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body struct {
				Status  string `json:"status"`
				Message string `json:"message"`
				Data    struct {
					Error struct {
						Kind string `json:"kind"`
					} `json:"error"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantKind, body.Data.Error.Kind)
		})
	}
}

func TestResponseEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "req-9")

	Success(c, "ok", gin.H{"n": 1})

	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "req-9", body.RequestID)
}
