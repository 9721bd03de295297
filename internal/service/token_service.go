package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lms-backend/internal/config"
	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenService issues and verifies the three credentials of the platform:
// short-lived access tokens, long-lived refresh tokens, and self-contained
// activation tickets. Access and refresh tokens are signed with distinct
// secrets so a leaked access secret cannot mint refresh tokens.
type TokenService struct {
	accessSecret     []byte
	refreshSecret    []byte
	activationSecret []byte
	accessTTL        time.Duration
	refreshTTL       time.Duration
	activationTTL    time.Duration
	cookieSecure     bool
	cookieSameSite   http.SameSite
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:     []byte(cfg.AccessTokenSecret),
		refreshSecret:    []byte(cfg.RefreshTokenSecret),
		activationSecret: []byte(cfg.ActivationSecret),
		accessTTL:        cfg.AccessTokenTTL,
		refreshTTL:       cfg.RefreshTokenTTL,
		activationTTL:    cfg.ActivationTTL,
		cookieSecure:     cfg.CookieSecure,
		cookieSameSite:   cfg.CookieSameSite,
	}
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) SignAccessToken(userID string) (string, error) {
	return signToken(s.accessSecret, userID, tokenTypeAccess, s.accessTTL)
}

func (s *TokenService) SignRefreshToken(userID string) (string, error) {
	return signToken(s.refreshSecret, userID, tokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	return verifyToken(s.accessSecret, tokenString, tokenTypeAccess)
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	return verifyToken(s.refreshSecret, tokenString, tokenTypeRefresh)
}

type activationClaims struct {
	User           model.PendingUser `json:"user"`
	ActivationCode string            `json:"activationCode"`
	jwt.RegisteredClaims
}

// CreateActivationTicket signs a ticket embedding the pending registration
// and a 4-digit code. The ticket is never persisted; validity is entirely
// signature + expiry + code match.
func (s *TokenService) CreateActivationTicket(pending model.PendingUser) (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", "", fmt.Errorf("generating activation code: %w", err)
	}
	code := fmt.Sprintf("%d", n.Int64()+1000)

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, activationClaims{
		User:           pending,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.activationTTL)),
		},
	})

	signed, err := token.SignedString(s.activationSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign activation ticket: %w", err)
	}

	return signed, code, nil
}

// VerifyActivationTicket checks signature, expiry, and the submitted code,
// in that order, so each failure surfaces as its own error.
func (s *TokenService) VerifyActivationTicket(ticket string, submittedCode string) (model.PendingUser, error) {
	claims := &activationClaims{}
	parsed, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return s.activationSecret, nil
	})
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.PendingUser{}, apierror.Unauthorized("Activation token has expired")
		}
		return model.PendingUser{}, apierror.Unauthorized("Invalid activation token")
	}

	if claims.ActivationCode != submittedCode {
		return model.PendingUser{}, apierror.BadRequest("Invalid activation code")
	}

	return claims.User, nil
}

// AccessCookie carries the short-lived bearer credential for every request.
func (s *TokenService) AccessCookie(token string) *http.Cookie {
	return s.cookie(AccessCookieName, token, s.accessTTL)
}

// RefreshCookie is only consumed by the refresh endpoint.
func (s *TokenService) RefreshCookie(token string) *http.Cookie {
	return s.cookie(RefreshCookieName, token, s.refreshTTL)
}

// ExpiredCookies overwrite both session cookies on logout.
func (s *TokenService) ExpiredCookies() []*http.Cookie {
	return []*http.Cookie{
		s.cookie(AccessCookieName, "", -time.Second),
		s.cookie(RefreshCookieName, "", -time.Second),
	}
}

func (s *TokenService) cookie(name string, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: s.cookieSameSite,
	}
}

func signToken(secret []byte, userID string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"typ": tokenType,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func verifyToken(secret []byte, tokenString string, expectedType string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apierror.Unauthorized("Token has expired")
		}
		return "", apierror.Unauthorized("Invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", apierror.Unauthorized("Invalid token claims")
	}

	if typ, _ := claims["typ"].(string); typ != expectedType {
		return "", apierror.Unauthorized("Invalid token type")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", apierror.Unauthorized("Invalid token subject")
	}

	return userID, nil
}
