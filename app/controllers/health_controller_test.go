package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"volunvibe/app/config"
	"volunvibe/app/repositories/mock"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthController(t *testing.T) {
	store := mock.NewStore()
	controller := NewHealthController(store, config.DriverBadger, zap.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/", controller.Root).Methods("GET")
	router.HandleFunc("/healthz", controller.Healthz).Methods("GET")

	t.Run("root", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, LivenessMessage, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("healthy store", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["ok"])
		assert.Equal(t, config.DriverBadger, response["store"])
	})

	t.Run("store down", func(t *testing.T) {
		store.FailPing = errors.New("dial tcp: connection refused")
		defer func() { store.FailPing = nil }()

		w := doRequest(router, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "store unavailable", decodeError(t, w))
	})
}
