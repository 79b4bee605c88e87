package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager("test-secret-at-least-sixteen", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Errorf("Verify = %s, want %s", got, userID)
	}
}

func TestTokenManager_Verify_Failures(t *testing.T) {
	m := NewTokenManager("test-secret-at-least-sixteen", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		if _, err := m.Verify("not.a.token"); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("got %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("a-completely-different-secret", time.Hour)
		token, err := other.Issue(uuid.New())
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := m.Verify(token); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("got %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-secret-at-least-sixteen", time.Hour)
		expired.ttl = -time.Minute
		token, err := expired.Issue(uuid.New())
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := m.Verify(token); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("got %v, want ErrUnauthenticated", err)
		}
	})
}
