package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"volunvibe/app/auth"
	apperrors "volunvibe/app/errors"
	"volunvibe/app/middleware"

	"go.uber.org/zap"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Helper methods for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		var de *apperrors.DomainError
		if errors.As(err, &de) && de.Stack != nil {
			fields = append(fields, zap.ByteString("stack", de.Stack))
		}
		logger.Error("request failed", fields...)
	}
	sendJSON(w, status, map[string]string{"error": apperrors.PublicMessage(err)})
}

// readBody reads the request body, refusing anything over maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.InvalidInput("unreadable request body", err)
	}
	return data, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.InvalidInput("invalid JSON", err)
	}
	return nil
}

// callerEmail returns the verified email set by the auth middleware.
func callerEmail(r *http.Request) (string, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return "", apperrors.Unauthenticated("unauthorized access", nil)
	}
	return id.Email, nil
}
