package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "secret1" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !h.Verify("secret1", digest) {
		t.Error("expected the original password to verify")
	}
	if h.Verify("secret2", digest) {
		t.Error("expected a different password to fail")
	}
}

func TestNewHasher_OutOfRangeCostFallsBack(t *testing.T) {
	if got := NewHasher(2).cost; got != bcrypt.DefaultCost {
		t.Errorf("expected default cost, got %d", got)
	}
	if got := NewHasher(12).cost; got != 12 {
		t.Errorf("expected cost 12, got %d", got)
	}
}

func TestTokenIssuer_Claims(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ti := NewTokenIssuer("secret", 2*time.Hour)
	ti.now = func() time.Time { return issued }

	token, err := ti.Issue("64b000000000000000000001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if claims["sub"] != "64b000000000000000000001" || claims["userId"] != "64b000000000000000000001" {
		t.Errorf("unexpected subject claims: %v", claims)
	}
	if exp := int64(claims["exp"].(float64)); exp != issued.Add(2*time.Hour).Unix() {
		t.Errorf("unexpected exp %d", exp)
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Error("expected a jti claim")
	}
}

func TestTokenIssuer_UniquePerIssue(t *testing.T) {
	ti := NewTokenIssuer("secret", 0)
	a, _ := ti.Issue("u1")
	b, _ := ti.Issue("u1")
	if a == b {
		t.Error("expected distinct tokens for repeated issues")
	}
	if ti.ttl != defaultTokenTTL {
		t.Errorf("expected default ttl, got %v", ti.ttl)
	}
}

func TestTokenIssuer_RejectsEmptyUser(t *testing.T) {
	if _, err := NewTokenIssuer("secret", time.Hour).Issue(""); err == nil {
		t.Fatal("expected an error for an empty user id")
	}
}
