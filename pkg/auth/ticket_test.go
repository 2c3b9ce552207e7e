package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTicketRoundTrip(t *testing.T) {
	tickets := NewTickets("secret", time.Hour)
	token, err := tickets.Issue("game-1", 2)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tickets.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.GameID != "game-1" || claims.Player != 2 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTicketRejections(t *testing.T) {
	tickets := NewTickets("secret", time.Hour)
	token, err := tickets.Issue("game-1", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewTickets("other", time.Hour).Validate(token); err == nil {
		t.Errorf("ticket accepted under a different secret")
	}
	if _, err := tickets.Validate(token + "x"); err == nil {
		t.Errorf("tampered ticket accepted")
	}
	if _, err := tickets.Validate("not-a-token"); err == nil {
		t.Errorf("garbage accepted")
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &TicketClaims{GameID: "game-1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := tickets.Validate(raw); err == nil {
		t.Errorf("unsigned ticket accepted")
	}
}

func TestTicketExpiry(t *testing.T) {
	tickets := NewTickets("secret", time.Minute)
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tickets.now = func() time.Time { return issued }

	token, err := tickets.Issue("game-1", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tickets.Validate(token); err != nil {
		t.Fatalf("fresh ticket rejected: %v", err)
	}

	tickets.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tickets.Validate(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expired ticket: err = %v, want %v", err, jwt.ErrTokenExpired)
	}
}
