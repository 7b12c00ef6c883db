package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/truassets/internal/model"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

var investor = model.AuthenticatedUser{ID: "user-abc-123", Name: "Asha", Email: "asha@example.com", Role: model.RoleUser}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(investor)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if n := strings.Count(token, "."); n != 2 {
		t.Errorf("Generate() token has %d dots, want 2", n)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	admin := model.AuthenticatedUser{ID: AdminID, Role: model.RoleAdmin}

	for _, u := range []model.AuthenticatedUser{investor, admin} {
		token, err := ts.Generate(u)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		got, err := ts.Validate(token)
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if got.UserID != u.ID || got.Role != u.Role {
			t.Errorf("Validate() = %+v, want {%s %s}", got, u.ID, u.Role)
		}
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(investor, -time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}
	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject an expired token")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate(investor)

	tampered := token[:len(token)-2] + "xx"
	if tampered == token {
		tampered = token[:len(token)-2] + "yy"
	}
	if _, err := ts.Validate(tampered); err == nil {
		t.Fatal("Validate() should reject a token with a modified signature")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, _ := NewTokenService("a-completely-different-secret")
	token, _ := other.Generate(investor)

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token signed with another secret")
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	ts := newTestTokenService(t)
	c := jwt.RegisteredClaims{
		Subject:   investor.ID,
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token from another issuer")
	}
}

func TestValidate_NoneAlgorithm(t *testing.T) {
	ts := newTestTokenService(t)
	c := claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   AdminID,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject alg=none")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)
	for _, in := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ts.Validate(in); err == nil {
			t.Errorf("Validate(%q) should fail", in)
		}
	}
}
