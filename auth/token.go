// Package auth issues and verifies the signed bearer tokens handed out at login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"options-pricer/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"

	TokenType = "bearer"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrRefreshDisabled = errors.New("refresh tokens are not enabled")
)

// Identity is the user a verified token speaks for.
type Identity struct {
	UserID   uint
	Username string
}

// Claims is the JWT payload. The username travels in "sub".
type Claims struct {
	UserID   uint   `json:"id"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

// NewTokenService builds a service from cfg. store may be nil, in which case
// only access tokens are issued.
func NewTokenService(cfg *config.Config, store RefreshStore) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("empty signing secret")
	}
	return &TokenService{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  cfg.AccessTokenExpiry,
		refreshTTL: cfg.RefreshTokenExpiry,
		store:      store,
		now:        time.Now,
	}, nil
}

func (s *TokenService) RefreshEnabled() bool {
	return s.store != nil
}

// IssueAccess signs a short-lived access token for id.
func (s *TokenService) IssueAccess(id Identity) (string, error) {
	token, _, err := s.sign(id, useAccess, s.accessTTL)
	return token, err
}

// IssuePair returns an access token and, when a refresh store is configured,
// a refresh token recorded in that store.
func (s *TokenService) IssuePair(ctx context.Context, id Identity) (TokenPair, error) {
	access, err := s.IssueAccess(id)
	if err != nil {
		return TokenPair{}, err
	}
	pair := TokenPair{AccessToken: access, TokenType: TokenType}
	if s.store == nil {
		return pair, nil
	}

	refresh, jti, err := s.sign(id, useRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.Save(ctx, jti, id.UserID, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	pair.RefreshToken = refresh
	return pair, nil
}

// Parse verifies an access token and returns the identity it carries.
func (s *TokenService) Parse(token string) (Identity, error) {
	claims, err := s.parse(token, useAccess)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Username: claims.Subject}, nil
}

// Refresh consumes a refresh token and issues a new pair. Each refresh token
// can be used once.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if s.store == nil {
		return TokenPair{}, ErrRefreshDisabled
	}
	claims, err := s.parse(refreshToken, useRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	userID, err := s.store.Consume(ctx, claims.ID)
	if errors.Is(err, ErrRefreshNotFound) {
		return TokenPair{}, fmt.Errorf("%w: refresh token revoked or already used", ErrInvalidToken)
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}
	if userID != claims.UserID {
		return TokenPair{}, fmt.Errorf("%w: refresh token owner mismatch", ErrInvalidToken)
	}

	return s.IssuePair(ctx, Identity{UserID: claims.UserID, Username: claims.Subject})
}

func (s *TokenService) sign(id Identity, use string, ttl time.Duration) (string, string, error) {
	now := s.now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:   id.UserID,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

func (s *TokenService) parse(token, use string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing subject or user id", ErrInvalidToken)
	}
	if claims.TokenUse != use {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, use)
	}
	return claims, nil
}
