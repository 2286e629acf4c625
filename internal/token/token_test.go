package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/task-service/internal/apperrors"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	m := NewManager("test-secret", 7*24*time.Hour)

	signed, err := m.Issue("user-1", "alice@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "alice@x.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "alice@x.com")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	base := time.Now()
	m.now = func() time.Time { return base }

	signed, err := m.Issue("user-1", "alice@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = m.Verify(signed)
	if err == nil {
		t.Fatal("Verify() expected error for expired token")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeTokenExpired {
		t.Errorf("code = %q, want %q", code, apperrors.CodeTokenExpired)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(input)
		if err == nil {
			t.Fatalf("Verify(%q) expected error", input)
		}
		if code := apperrors.CodeOf(err); code != apperrors.CodeUnauthorized {
			t.Errorf("Verify(%q) code = %q, want %q", input, code, apperrors.CodeUnauthorized)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewManager("other-secret", time.Hour)
	signed, err := other.Issue("user-1", "alice@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m := NewManager("test-secret", time.Hour)
	_, err = m.Verify(signed)
	if err == nil {
		t.Fatal("Verify() expected error for token signed with a different secret")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnauthorized {
		t.Errorf("code = %q, want %q", code, apperrors.CodeUnauthorized)
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	claims := &Claims{
		Email: "alice@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := m.Verify(signed); err == nil {
		t.Fatal("Verify() expected error for token without a user id")
	}
}
