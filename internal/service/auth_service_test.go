package service

import (
	"testing"
	"time"
)

func newTestAuthService() *AuthService {
	return &AuthService{
		botToken:  "test-bot-token",
		jwtSecret: []byte("test-secret"),
		tokenTTL:  time.Hour,
	}
}

func TestNormalizeReferralPayload(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ref_ABC123", "ABC123"},
		{"r_abc123", "ABC123"},
		{"XYZ789", "XYZ789"},
		{"xyz789", "XYZ789"},
		{"", ""},
		{"ref_", ""},
		{"TOOLONG1", ""},
		{"SHORT", ""},
		{"AB-123", ""},
	}
	for _, c := range cases {
		if got := NormalizeReferralPayload(c.in); got != c.want {
			t.Errorf("NormalizeReferralPayload(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestAuthService()

	token, err := s.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	userID, err := s.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	s := newTestAuthService()
	token, err := s.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	other := newTestAuthService()
	other.jwtSecret = []byte("different-secret")
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}
