// Package auth verifies session tokens issued by the external identity
// provider and exposes the caller's identity to the rest of the app.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fsreport/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the token for browser navigation, where setting an
// Authorization header is not possible.
const SessionCookie = "fsr_session"

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	SubjectID string
	Name      string
	Email     string
}

// DisplayName picks the best available label for report headers.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return "User"
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a token, returning the identity it asserts.
func (v *Verifier) Verify(tokenStr string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", core.ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unexpected claims type", core.ErrNotAuthenticated)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: subject missing from token", core.ErrNotAuthenticated)
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return Identity{SubjectID: sub, Name: name, Email: email}, nil
}

type contextKey struct{}

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// FromContext returns the verified identity, or ErrNotAuthenticated when the
// request never passed verification.
func FromContext(ctx context.Context) (Identity, error) {
	ident, ok := ctx.Value(contextKey{}).(Identity)
	if !ok {
		return Identity{}, core.ErrNotAuthenticated
	}
	return ident, nil
}

// TokenFromRequest looks for the session token in the Authorization header
// first, then the session cookie. Returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware attaches the verified identity to the request context. Requests
// without a valid token pass through anonymous; handlers that need a caller
// use FromContext and fail with ErrNotAuthenticated.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := TokenFromRequest(r); tokenStr != "" {
				if ident, err := v.Verify(tokenStr); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), ident))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, core.ErrNotAuthenticated)
}
