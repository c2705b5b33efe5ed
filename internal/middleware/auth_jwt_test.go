package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	claims := TokenClaims{Sub: "i-1", Role: "investor", Exp: time.Now().Add(time.Hour).Unix()}
	token, err := SignJWT("secret", claims)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if decoded.Sub != "i-1" || decoded.Role != "investor" {
		t.Fatalf("claims = %+v", decoded)
	}
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "i-1"})
	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatal("wrong secret must be rejected")
	}
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := VerifyJWT("secret", tampered); err == nil {
		t.Fatal("tampered payload must be rejected")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "i-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	var gotUser, gotRole string
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = UserRoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d", rec.Code)
	}

	token, _ := SignJWT("secret", TokenClaims{Sub: "i-1", Role: "investor", Exp: time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}
	if gotUser != "i-1" || gotRole != "investor" {
		t.Fatalf("context identity = %q/%q", gotUser, gotRole)
	}
}
