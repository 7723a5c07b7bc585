package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "gatherly"

// TokenManager issues HS256 session tokens and validates incoming ones.
// Its own tokens are always checked against the shared secret. When a JWKS
// URL is configured, asymmetrically signed tokens are checked against the
// remote key set.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	jwks   *keyfunc.JWKS
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// WithJWKS fetches the key set at jwksURL and keeps it refreshed in the
// background until Close is called.
func (tm *TokenManager) WithJWKS(ctx context.Context, jwksURL string, logger *slog.Logger) error {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("Failed to refresh JWKS", "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	tm.jwks = jwks
	return nil
}

func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

func (tm *TokenManager) Issue(userID, username, email string, isOrganizer bool, now time.Time) (string, time.Time, error) {
	expires := now.Add(tm.ttl)
	claims := CustomClaims{
		UserID:      userID,
		Username:    username,
		Email:       email,
		IsOrganizer: isOrganizer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

var validMethods = []string{"HS256", "RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512", "EdDSA"}

func (tm *TokenManager) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, tm.keyFor, jwt.WithValidMethods(validMethods))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// keyFor picks the verification key by signing method. HMAC tokens must be
// ones this service issued.
func (tm *TokenManager) keyFor(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		claims, ok := token.Claims.(*CustomClaims)
		if !ok || claims.Issuer != tokenIssuer {
			return nil, errors.New("unexpected token issuer")
		}
		return tm.secret, nil
	}
	if tm.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return tm.jwks.Keyfunc(token)
}

func (tm *TokenManager) Close() {
	if tm.jwks != nil {
		tm.jwks.EndBackground()
	}
}
