// Package auth issues and verifies the bearer tokens that identify a user,
// and carries the verified user ID through request contexts.
package auth

import (
	"context"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// Tokens signs HS256 tokens whose subject is the user ID.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID that expires after the configured TTL.
func (t *Tokens) Issue(userID uuid.UUID) (string, error) {
	now := t.now()
	claims := jwtv5.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Tokens.Issue: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its user ID.
// Every failure wraps domain.ErrUnauthorized.
func (t *Tokens) Verify(raw string) (uuid.UUID, error) {
	token, err := jwtv5.Parse(raw, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthorized)
	}
	return id, nil
}

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user stored by WithUserID.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}
