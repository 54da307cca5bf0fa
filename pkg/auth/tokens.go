package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackdesk-inc/trackdesk-engine/pkg/models"
)

// Token validation errors.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenPair bundles the access and refresh tokens returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and validates access/refresh token pairs.
type TokenService interface {
	// Issue creates an access+refresh pair for the given user.
	Issue(user *models.User) (*TokenPair, error)

	// IssueAccess creates a fresh access token from validated refresh claims.
	IssueAccess(claims *Claims) (string, error)

	// Validate parses and verifies a token of the expected type.
	Validate(tokenString, expectedType string) (*Claims, error)
}

// tokenService implements TokenService with HS256 signing.
type tokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) TokenService {
	return &tokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates an access+refresh pair for the given user.
func (s *tokenService) Issue(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user.ID.String(), user.Username, user.IsSuperuser, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(user.ID.String(), user.Username, user.IsSuperuser, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess creates a fresh access token carrying the identity from
// validated refresh claims.
func (s *tokenService) IssueAccess(claims *Claims) (string, error) {
	return s.sign(claims.Subject, claims.Username, claims.IsSuperuser, TokenTypeAccess, s.accessTTL)
}

// Validate parses and verifies a token, rejecting tokens of the wrong type.
func (s *tokenService) Validate(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

func (s *tokenService) sign(subject, username string, isSuperuser bool, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username:    username,
		IsSuperuser: isSuperuser,
		TokenType:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Ensure tokenService implements TokenService at compile time.
var _ TokenService = (*tokenService)(nil)
