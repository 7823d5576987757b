package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes JWT payload. Identity tokens are minted by the surrounding platform with
// the same shape; kind is absent on those.
type Claims struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	AdmissionNumber *string          `json:"admission_number,omitempty"`
	Kind            domain.ActorKind `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims to the caller seen by services.
func (c *Claims) Actor() domain.Actor {
	kind := c.Kind
	if kind == "" {
		kind = domain.ActorKindIdentity
	}
	id := c.ID
	if id == "" {
		id = c.Subject
	}
	return domain.Actor{
		ID:              id,
		Role:            c.Role,
		AdmissionNumber: c.AdmissionNumber,
		Kind:            kind,
	}
}

// GenerateToken builds and signs a JWT for the actor.
func (tm *TokenManager) GenerateToken(actor domain.Actor) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		ID:              actor.ID,
		Role:            actor.Role,
		AdmissionNumber: actor.AdmissionNumber,
		Kind:            actor.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" && claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if claims.Role == "" {
		return nil, errors.New("token has no role")
	}
	return claims, nil
}
