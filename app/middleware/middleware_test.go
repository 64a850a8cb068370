package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"volunvibe/app/auth"
	apperrors "volunvibe/app/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var seenID string
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Contains(t, fields, "took")

	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, fields["request_id"])
	assert.Equal(t, seenID, rw.Header().Get(RequestIDHeader))
}

func TestLoggerKeepsIncomingRequestID(t *testing.T) {
	handler := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", RequestID(r.Context()))
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	assert.Equal(t, "abc-123", rw.Header().Get(RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := Recoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic").Len())
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		name           string
		override       string
		expectedHeader string
	}{
		{
			name:           "default",
			expectedHeader: "application/json",
		},
		{
			name:           "handler override",
			override:       "text/plain; charset=utf-8",
			expectedHeader: "text/plain; charset=utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.override != "" {
					w.Header().Set("Content-Type", tt.override)
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedHeader, w.Header().Get("Content-Type"))
		})
	}
}

type stubVerifier struct {
	identity auth.Identity
	err      error
}

func (v stubVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	return v.identity, v.err
}

func TestRequireAuth(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(id.Email))
	})

	tests := []struct {
		name       string
		cookie     string
		verifier   stubVerifier
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no cookie",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"unauthorized access"}`,
		},
		{
			name:       "invalid token",
			cookie:     "bad",
			verifier:   stubVerifier{err: apperrors.InvalidCredentials("invalid token", nil)},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid token"}`,
		},
		{
			name:       "revocation backend down",
			cookie:     "good",
			verifier:   stubVerifier{err: apperrors.Internal("failed to check token revocation", nil)},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"failed to check token revocation"}`,
		},
		{
			name:       "valid token",
			cookie:     "good",
			verifier:   stubVerifier{identity: auth.Identity{Email: "a@x.com"}},
			wantStatus: http.StatusOK,
			wantBody:   "a@x.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAuth(tt.verifier, zap.NewNop())(protected)

			req := httptest.NewRequest("GET", "/post/a@x.com", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if w.Code == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/needVolunteer", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/needVolunteer", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
