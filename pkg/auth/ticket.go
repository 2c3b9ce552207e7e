package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketClaims identify one seat at one game. A client that drops its socket
// presents the ticket to take the seat back.
type TicketClaims struct {
	GameID string `json:"game_id"`
	Player int    `json:"player"`
	jwt.RegisteredClaims
}

// Tickets signs and checks HS256 game tickets.
type Tickets struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTickets(secret string, ttl time.Duration) *Tickets {
	return &Tickets{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tickets) Issue(gameID string, player int) (string, error) {
	now := t.now()
	claims := &TicketClaims{
		GameID: gameID,
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   gameID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tickets) Validate(tokenString string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TicketClaims); ok && token.Valid && claims.GameID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid ticket")
}
