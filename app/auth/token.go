package auth

import (
	"context"
	"errors"
	"time"

	apperrors "volunvibe/app/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an identity token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 identity tokens.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
	now     func() time.Time
}

// NewTokenService creates a TokenService. revoked may be nil.
func NewTokenService(secret string, ttl time.Duration, revoked RevocationList) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for email that expires after the service TTL.
func (s *TokenService) Issue(email string) (string, Identity, error) {
	if email == "" {
		return "", Identity{}, apperrors.InvalidInput("email is required", nil)
	}

	now := s.now()
	id := Identity{
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Identity{}, apperrors.Internal("failed to sign token", err)
	}
	return signed, id, nil
}

// Verify checks the algorithm, signature, expiry and revocation of token.
func (s *TokenService) Verify(ctx context.Context, token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperrors.InvalidCredentials("token expired", err)
		}
		return Identity{}, apperrors.InvalidCredentials("invalid token", err)
	}
	if claims.Email == "" {
		return Identity{}, apperrors.InvalidCredentials("token carries no email", nil)
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, token)
		if err != nil {
			return Identity{}, apperrors.Internal("failed to check token revocation", err)
		}
		if revoked {
			return Identity{}, apperrors.InvalidCredentials("token revoked", nil)
		}
	}

	return Identity{
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates token for the rest of its lifetime. Tokens that do not
// verify are ignored.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if s.revoked == nil || token == "" {
		return nil
	}
	id, err := s.Verify(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTypeInvalidCredentials) {
			return nil
		}
		return err
	}
	return s.revoked.Revoke(ctx, token, id.ExpiresAt)
}
