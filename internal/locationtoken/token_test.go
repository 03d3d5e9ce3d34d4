package locationtoken

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var base = time.Date(2024, time.March, 4, 9, 30, 15, 500, time.UTC)

func TestIssueVerify(t *testing.T) {
	s := New("secret", WithClock(func() time.Time { return base }))

	tok, err := s.Issue(12.9716, 77.5946, "ip:10.0.0.1", 2*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected three segments, got %q", tok)
	}

	proof, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if proof.Latitude != 12.9716 || proof.Longitude != 77.5946 {
		t.Errorf("unexpected coordinates: %+v", proof)
	}
	if proof.Subject != "ip:10.0.0.1" {
		t.Errorf("unexpected subject %q", proof.Subject)
	}
	if !proof.IssuedAt.Equal(base.Truncate(time.Second)) {
		t.Errorf("unexpected iat %v", proof.IssuedAt)
	}
	if got := proof.ExpiresAt.Sub(proof.IssuedAt); got != 2*time.Minute {
		t.Errorf("unexpected ttl %v", got)
	}
}

func TestVerify_Expiry(t *testing.T) {
	now := base
	s := New("secret", WithClock(func() time.Time { return now }))
	tok, err := s.Issue(1, 2, "", MinTTL)
	if err != nil {
		t.Fatal(err)
	}

	now = base.Add(MinTTL - 2*time.Second)
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("expected valid token before expiry, got %v", err)
	}

	now = base.Add(MinTTL + time.Second)
	if _, err := s.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerify_Tampering(t *testing.T) {
	s := New("secret", WithClock(func() time.Time { return base }))
	tok, err := s.Issue(12.9716, 77.5946, "u1", DefaultTTL)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if _, err := s.Verify(string(b)); err == nil {
			t.Fatalf("tampered byte %d accepted", i)
		}
	}

	other := New("another", WithClock(func() time.Time { return base }))
	if _, err := other.Verify(tok); !errors.Is(err, ErrSignature) {
		t.Errorf("expected ErrSignature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	s := New("secret")
	for _, tok := range []string{"", "abc", "a.b.c", ".."} {
		if _, err := s.Verify(tok); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q): expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestDisabledSigner(t *testing.T) {
	s := New("")
	if s.Enabled() {
		t.Fatal("signer without secret must be disabled")
	}
	tok, err := s.Issue(1, 2, "u1", DefaultTTL)
	if err != nil || tok != "" {
		t.Errorf("expected empty token without error, got %q, %v", tok, err)
	}
	if _, err := s.Verify("a.b.c"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}

	var nilSigner *Signer
	if nilSigner.Enabled() {
		t.Error("nil signer must be disabled")
	}
}

func TestClampTTL(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultTTL},
		{time.Second, MinTTL},
		{-time.Minute, MinTTL},
		{90 * time.Second, 90 * time.Second},
		{time.Hour, MaxTTL},
	}
	for _, tt := range tests {
		if got := ClampTTL(tt.in); got != tt.want {
			t.Errorf("ClampTTL(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVerify_RequiresProofAudience(t *testing.T) {
	s := New("secret", WithClock(func() time.Time { return base }))
	exp := jwt.NewNumericDate(base.Add(time.Minute))

	for name, aud := range map[string]jwt.ClaimStrings{
		"identity audience": {"attendance-api"},
		"no audience":       nil,
	} {
		t.Run(name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
				Lat: 12.9716,
				Lng: 77.5946,
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Audience: aud, ExpiresAt: exp},
			}).SignedString([]byte("secret"))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.Verify(tok); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected token to be rejected, got %v", err)
			}
		})
	}
}
