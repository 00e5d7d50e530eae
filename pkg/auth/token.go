// Package auth resolves the calling account from bearer tokens. It is the
// narrow authentication boundary of the service: handlers only ever see the
// resolved account id.
package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"github.com/mesa-hq/mesa-server/internal/config"
	"github.com/mesa-hq/mesa-server/pkg/logger"
)

var Module = fx.Module("auth",
	fx.Provide(
		NewService,
		NewMiddleware,
	),
)

// Claims are the JWT claims carried by an account token.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// Service mints and verifies account tokens (HS256, shared secret).
type Service struct {
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger
}

// NewService creates a token service from configuration.
func NewService(cfg *config.Config, log *slog.Logger) (*Service, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return &Service{
		secret:   []byte(cfg.Auth.JWTSecret),
		tokenTTL: cfg.Auth.TokenTTL,
		log:      log.With(logger.Scope("auth")),
	}, nil
}

// MintToken issues a signed token for an account.
func (s *Service) MintToken(accountID string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ResolveAccountID verifies a token and returns the account id it carries.
func (s *Service) ResolveAccountID(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.AccountID == "" {
		return "", fmt.Errorf("token carries no account")
	}

	return claims.AccountID, nil
}
