// Package session guards the household app with a shared PIN and short-lived
// JWT sessions. There is one subject, the household; no per-user accounts.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadPIN       = errors.New("wrong pin")
	ErrInvalidToken = errors.New("invalid session token")
	ErrDisabled     = errors.New("authentication disabled")
)

const subject = "household"

type Manager struct {
	secret []byte
	pin    string
	ttl    time.Duration
	now    func() time.Time
}

// New returns a manager. An empty pin disables authentication: Login fails
// and Enabled reports false so the HTTP layer skips the auth middleware.
func New(secret, pin string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		pin:    pin,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a PIN is configured.
func (m *Manager) Enabled() bool { return m.pin != "" }

// Login checks the PIN and issues a signed session token.
func (m *Manager) Login(pin string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(m.pin)) != 1 {
		return "", ErrBadPIN
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies the token signature, expiry and subject.
func (m *Manager) Authenticate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != subject {
		return ErrInvalidToken
	}
	return nil
}
