package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "a@b.c", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "a@b.c" {
		t.Errorf("Email = %q, want a@b.c", claims.Email)
	}
	if claims.JTI == "" {
		t.Error("JTI is empty")
	}
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	first, _ := GenerateAccessToken("user-1", "", "secret", time.Hour)
	second, _ := GenerateAccessToken("user-1", "", "secret", time.Hour)

	a, err := ValidateAccessToken(first, "secret")
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	b, err := ValidateAccessToken(second, "secret")
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if a.JTI == b.JTI {
		t.Errorf("two tokens share JTI %q", a.JTI)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, _ := GenerateAccessToken("user-1", "", "secret", time.Hour)
	if _, err := ValidateAccessToken(token, "other"); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ValidateAccessToken(expired, "secret"); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateAccessToken_MissingUser(t *testing.T) {
	token, _ := GenerateAccessToken("", "", "secret", time.Hour)
	if _, err := ValidateAccessToken(token, "secret"); err == nil {
		t.Error("token without user_id accepted")
	}
}
