package auth

import (
	"errors"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orderboard/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingDest      = errors.New("missing dest claim")
	ErrAudienceMismatch = errors.New("token audience does not match API key")
)

// SessionClaims are the claims of an embedded-app session token. Shopify
// signs these with the app's API secret; dest carries the shop origin.
type SessionClaims struct {
	jwt.RegisteredClaims
	Dest string `json:"dest"`
}

// SessionTokenVerifier validates Shopify session tokens and resolves the
// shop domain they were issued for.
type SessionTokenVerifier struct {
	secret []byte
	apiKey string
}

// NewSessionTokenVerifier creates a verifier from the Shopify app credentials
func NewSessionTokenVerifier(cfg config.ShopifyConfig) *SessionTokenVerifier {
	return &SessionTokenVerifier{
		secret: []byte(cfg.APISecret),
		apiKey: cfg.APIKey,
	}
}

// Verify validates the token signature and liveness and returns the shop
// domain from the dest claim, e.g. "demo-store.myshopify.com".
func (v *SessionTokenVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return "", ErrTokenNotYetValid
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidClaims
	}

	if v.apiKey != "" {
		audience, err := claims.GetAudience()
		if err != nil || !containsAudience(audience, v.apiKey) {
			return "", ErrAudienceMismatch
		}
	}

	shop, err := shopDomainFromDest(claims.Dest)
	if err != nil {
		return "", err
	}
	return shop, nil
}

func containsAudience(audience jwt.ClaimStrings, apiKey string) bool {
	for _, a := range audience {
		if a == apiKey {
			return true
		}
	}
	return false
}

// shopDomainFromDest extracts the host from the dest claim. Shopify sends
// a full origin like https://demo-store.myshopify.com.
func shopDomainFromDest(dest string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", ErrMissingDest
	}

	if !strings.Contains(dest, "://") {
		return strings.ToLower(dest), nil
	}

	parsed, err := url.Parse(dest)
	if err != nil || parsed.Host == "" {
		return "", ErrInvalidClaims
	}
	return strings.ToLower(parsed.Host), nil
}
