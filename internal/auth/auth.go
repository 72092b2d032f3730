// Package auth issues and verifies the shop's admin session tokens. The
// shop has one operator account configured through the environment; the
// services only need an opaque actor name, so auth stays at the HTTP
// edge.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrInvalidToken   = errors.New("invalid token")
)

type Service struct {
	secret   []byte
	username string
	password string
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds the auth service. now is injectable for tests; pass
// nil for the wall clock.
func NewService(secret, username, password string, ttl time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		secret:   []byte(secret),
		username: username,
		password: password,
		ttl:      ttl,
		now:      now,
	}
}

// Login checks the credentials and returns a signed bearer token.
func (s *Service) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1

	if !userOK || !passOK {
		return "", ErrBadCredentials
	}

	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

// Verify validates a bearer token and returns the actor username it was
// issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
