package controllers

import (
	"net/http"

	"volunvibe/app/auth"

	"go.uber.org/zap"
)

// AuthController issues and clears the identity cookie
type AuthController struct {
	tokens  *auth.TokenService
	cookies auth.CookiePolicy
	logger  *zap.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(tokens *auth.TokenService, cookies auth.CookiePolicy, logger *zap.Logger) *AuthController {
	return &AuthController{tokens: tokens, cookies: cookies, logger: logger}
}

type tokenRequest struct {
	Email string `json:"email"`
}

// Issue signs a token for the posted email and sets it as the identity cookie
func (ac *AuthController) Issue(w http.ResponseWriter, r *http.Request) {
	var body tokenRequest
	if err := decodeJSON(w, r, &body); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	token, id, err := ac.tokens.Issue(body.Email)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	ac.cookies.Set(w, token, id.ExpiresAt)
	sendJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout revokes the presented token and clears the identity cookie
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.tokens.Revoke(r.Context(), auth.TokenFromRequest(r)); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	ac.cookies.Clear(w)
	sendJSON(w, http.StatusOK, map[string]bool{"success": true})
}
