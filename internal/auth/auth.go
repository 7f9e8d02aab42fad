// Package auth issues and verifies the bearer tokens that identify the owner
// of every request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type contextKey struct{}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// NewToken signs an HS256 token whose subject is the owner id.
func (i *Issuer) NewToken(owner uuid.UUID) (string, error) {
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   owner.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token and returns the owner it was issued for.
func (i *Issuer) Parse(raw string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	owner, err := uuid.Parse(claims.Subject)
	if err != nil || owner == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return owner, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// owner in the request context.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			log.Debug("authorization header missing or malformed", "path", r.URL.Path)
			respond.Fail(w, r, http.StatusUnauthorized, "authorization header required")
			return
		}

		owner, err := i.Parse(strings.TrimSpace(raw))
		if err != nil {
			log.Warn("token validation failed", "path", r.URL.Path, "error", err)
			respond.Fail(w, r, http.StatusUnauthorized, ErrInvalidToken.Error())
			return
		}

		ctx := WithOwner(r.Context(), owner)
		ctx = logger.ToContext(ctx, log.With(slog.String("owner", owner.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, owner)
}

func OwnerFrom(ctx context.Context) (uuid.UUID, bool) {
	owner, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return owner, ok
}

// Owner returns the owner set by Middleware, or uuid.Nil outside of it.
func Owner(ctx context.Context) uuid.UUID {
	owner, _ := OwnerFrom(ctx)
	return owner
}
