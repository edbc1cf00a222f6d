package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.NoError(t, Init("warn"))
	assert.Error(t, Init("verbose"))
}

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	require.NoError(t, Init("debug"))

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates a request id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, recorder.Code)
		assert.Regexp(t, `^\w+-\w+-\w+-\w+-\w+$`, recorder.Header().Get(RequestIDHeader))
	})

	t.Run("keeps the client request id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(RequestIDHeader, "abc-123")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "abc-123", recorder.Header().Get(RequestIDHeader))
	})
}
