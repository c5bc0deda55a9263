package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         any
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusOK,
			data:         map[string]any{"success": true},
			expectedBody: `{"success":true}`,
		},
		{
			name:         "bare value",
			status:       http.StatusOK,
			data:         true,
			expectedBody: `true`,
		},
		{
			name:         "nil",
			status:       http.StatusOK,
			data:         nil,
			expectedBody: `null`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user/isLoggedIn", nil)
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithError(t *testing.T) {
	t.Run("code with trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tab/nope", nil)
		req = req.WithContext(WithTraceID(req.Context(), "trace-1"))
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusNotFound, "not_found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not_found","trace_id":"trace-1"}`, w.Body.String())
	})

	t.Run("field error without trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusBadRequest, FieldError{Field: "password", ErrorCode: "invalid_login"})

		assert.JSONEq(t, `{"error":{"field":"password","error_code":"invalid_login"}}`, w.Body.String())
	})
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		elevate       bool
		expectedLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, expectedLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, expectedLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusForbidden, elevate: true, expectedLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, expectedLevel: "WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := logger.GetTestLogger(t)
			ctx := logger.WithLogger(WithTraceID(context.Background(), "trace-2"), log)
			req := httptest.NewRequest(http.MethodGet, "/api/user/getUser", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			err := errors.New("query failed for ivan@example.com")
			if tc.elevate {
				RespondWithErrorAndLog(w, req, tc.status, "some_code", err, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, req, tc.status, "some_code", err)
			}

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "some_code", body.Error)
			assert.Equal(t, "trace-2", body.TraceID)

			logger.AssertLogField(t, buf, "level", tc.expectedLevel)
			logger.AssertLogField(t, buf, "trace_id", "trace-2")
			logger.AssertLogField(t, buf, "error", "query failed for [REDACTED_EMAIL]")
			assert.NotContains(t, buf.String(), "ivan@example.com")
		})
	}
}
