package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	admission := "ADM-1"

	token, exp, err := tm.GenerateToken(domain.Actor{ID: "s1", Role: domain.RoleStudent, AdmissionNumber: &admission})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	actor := claims.Actor()
	assert.Equal(t, "s1", actor.ID)
	assert.True(t, actor.IsStudent())
	assert.Equal(t, domain.ActorKindIdentity, actor.Kind)
	require.NotNil(t, actor.AdmissionNumber)
	assert.Equal(t, "ADM-1", *actor.AdmissionNumber)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	token, _, err := NewTokenManager("other", 5).GenerateToken(domain.Actor{ID: "w1", Role: domain.RoleWorker, Kind: domain.ActorKindWorker})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRequiresRole(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{ID: "x"})
	signed, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 5).ParseToken(signed)
	assert.Error(t, err)
}

func TestMiddlewareStoresActor(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(fiber.StatusUnauthorized)
		},
	})
	app.Use(NewAuthMiddleware(tm).Handle)
	app.Get("/me", RequireStaff(), func(c *fiber.Ctx) error {
		actor, _ := ActorFromContext(c)
		return c.SendString(actor.ID + ":" + string(actor.Kind))
	})

	token, _, err := tm.GenerateToken(domain.Actor{ID: "w1", Role: domain.RoleWorker, Kind: domain.ActorKindWorker})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct-horse"))
	assert.Error(t, ComparePassword(hash, "wrong"))

	hash, err = HashPassword("correct-horse", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost, "out-of-range cost falls back to the default")
}
