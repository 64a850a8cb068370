package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"volunvibe/app/auth"
	"volunvibe/app/config"
	"volunvibe/app/controllers"
	"volunvibe/app/repositories"
	"volunvibe/app/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrigin = "http://localhost:5173"

type testApp struct {
	handler http.Handler
	store   *repositories.BadgerStore
	tokens  *auth.TokenService
}

// setupTestApp wires the full handler stack on an in-memory Badger store.
func setupTestApp(t *testing.T, mode string) *testApp {
	t.Helper()
	store, err := repositories.OpenBadger(repositories.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	tokens := auth.NewTokenService("test-secret", time.Hour, auth.NewMemoryRevocationList())
	ledger := services.NewLedger(store, mode, logger)
	postService := services.NewPostService(store, ledger, logger)

	handler := SetupRoutes(Controllers{
		Posts:    controllers.NewPostController(postService, logger),
		Requests: controllers.NewRequestController(ledger, logger),
		Auth:     controllers.NewAuthController(tokens, auth.CookiePolicy{}, logger),
		Health:   controllers.NewHealthController(store, config.DriverBadger, logger),
	}, tokens, []string{testOrigin}, logger)

	return &testApp{handler: handler, store: store, tokens: tokens}
}

// login issues an identity cookie for email through POST /jwt.
func (a *testApp) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := a.do(t, http.MethodPost, "/jwt", `{"email":"`+email+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie issued", auth.CookieName)
	return nil
}

func (a *testApp) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
