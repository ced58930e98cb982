package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret, "fsreport")

	good := signToken(t, jwt.MapClaims{
		"sub":   "subj-1",
		"name":  "Ann",
		"email": "a@example.com",
		"iss":   "fsreport",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	ident, err := v.Verify(good)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.SubjectID != "subj-1" || ident.Name != "Ann" || ident.Email != "a@example.com" {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"expired", jwt.MapClaims{"sub": "s", "iss": "fsreport", "exp": time.Now().Add(-time.Hour).Unix()}},
		{"wrong issuer", jwt.MapClaims{"sub": "s", "iss": "other", "exp": time.Now().Add(time.Hour).Unix()}},
		{"no subject", jwt.MapClaims{"iss": "fsreport", "exp": time.Now().Add(time.Hour).Unix()}},
		{"no expiry", jwt.MapClaims{"sub": "s", "iss": "fsreport"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(signToken(t, tc.claims)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "s", "iss": "fsreport", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := other.SignedString([]byte("not-the-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier(testSecret, "fsreport").Verify(s); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		ident Identity
		want  string
	}{
		{Identity{Name: "Ann", Email: "a@example.com"}, "Ann"},
		{Identity{Email: "a@example.com"}, "a@example.com"},
		{Identity{}, "User"},
	}
	for i, tc := range cases {
		if got := tc.ident.DisplayName(); got != tc.want {
			t.Fatalf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	r.Header.Set("Authorization", "Bearer abc")
	if got := TokenFromRequest(r); got != "abc" {
		t.Fatalf("header token: got %q", got)
	}
}

func TestTokenFromCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Cookie", SessionCookie+"=xyz")
	if got := TokenFromRequest(r); got != "xyz" {
		t.Fatalf("cookie token: got %q", got)
	}
}

func TestFromContext(t *testing.T) {
	if _, err := FromContext(context.Background()); err == nil {
		t.Fatal("expected ErrNotAuthenticated for bare context")
	}
	ctx := WithIdentity(context.Background(), Identity{SubjectID: "s"})
	ident, err := FromContext(ctx)
	if err != nil || ident.SubjectID != "s" {
		t.Fatalf("unexpected: %v %+v", err, ident)
	}
}
