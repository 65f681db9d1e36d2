package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"network-registry/internal/config"
	"network-registry/internal/domain"
	"network-registry/internal/domain/entity"
	domainService "network-registry/internal/domain/service"
)

// Compile-time check
var _ domainService.Authenticator = (*JWTAuthenticator)(nil)

// Claims are the registered claims plus the caller profile carried by access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 bearer tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	parser *jwt.Parser
	logger *zap.Logger
}

// NewJWTAuthenticator builds an authenticator from the jwt config section.
func NewJWTAuthenticator(cfg config.JWTConfig, logger *zap.Logger) *JWTAuthenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTAuthenticator{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
		logger: logger.Named("JWTAuthenticator"),
	}
}

// Authenticate parses and verifies token. Every failure is reported as unauthorized.
func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (*entity.Principal, error) {
	if token == "" {
		return nil, domain.NewUnauthorizedError("missing bearer token")
	}

	var claims Claims
	_, err := a.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		a.logger.Debug("Rejected bearer token", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewUnauthorizedError("token expired")
		}
		return nil, domain.NewUnauthorizedError("invalid token")
	}
	if claims.Subject == "" {
		return nil, domain.NewUnauthorizedError("token has no subject")
	}

	return &entity.Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// IssueToken signs an HS256 token for principal. cmd/token is its command-line front end.
func (a *JWTAuthenticator) IssueToken(principal entity.Principal, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: principal.Email,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
