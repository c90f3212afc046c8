package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"account_backend/internal/feature/account/domain/entity"
)

// Claims are the identity attributes embedded in a session credential.
type Claims struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user ID from the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

// Issuer creates and verifies the signed session credentials delivered as a
// cookie. A session is only ever issued for a verified user (or at the moment
// of verification), so the email_verified claim is always true.
type Issuer struct {
	secret        []byte
	sessionTTL    time.Duration
	persistentTTL time.Duration
}

// NewIssuer creates a new Issuer from the session configuration.
func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		secret:        []byte(cfg.Secret),
		sessionTTL:    cfg.SessionTTL,
		persistentTTL: cfg.PersistentTTL,
	}
}

// IssueSession creates a signed JWT binding the user's identity claims.
// persistent selects the longer TTL used for "remember me" sessions; the
// returned lifetime also drives the cookie Max-Age.
func (i *Issuer) IssueSession(user *entity.User, persistent bool) (string, time.Duration, error) {
	ttl := i.sessionTTL
	if persistent {
		ttl = i.persistentTTL
	}

	// Role is resolved by explicit preload; fall back to Member if the
	// record arrived without it.
	roleName := user.Role.RoleName
	if roleName == "" {
		roleName = entity.RoleNameMember
	}

	now := time.Now().UTC()
	claims := Claims{
		Name:          user.Name,
		Email:         user.Email,
		Role:          roleName,
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, ttl, nil
}

// ParseSession verifies a session credential and returns its claims.
// Any tampered, expired or malformed token yields an error.
func (i *Issuer) ParseSession(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムを確認（HMACのみ許可）
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
