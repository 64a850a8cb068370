package auth

import (
	"net/http"
	"time"
)

// CookieName is the cookie carrying the identity token.
const CookieName = "token"

// CookiePolicy decides the attributes of the identity cookie. Production
// deployments serve a cross-site frontend, so the cookie must be Secure and
// SameSite=None there.
type CookiePolicy struct {
	Production bool
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// Set writes the identity cookie holding token.
func (p CookiePolicy) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.Production,
		SameSite: p.sameSite(),
	})
}

// Clear expires the identity cookie.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Production,
		SameSite: p.sameSite(),
	})
}

// TokenFromRequest returns the raw token of the identity cookie, if any.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
