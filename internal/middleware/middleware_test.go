package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/matchplay-league/internal/config"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/services"
	"github.com/trentd187/matchplay-league/internal/testutil"
)

const secret = "test-secret"

func signed(t *testing.T, key string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func claimsFor(sub, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:  role,
		Email: sub + "@example.com",
		Name:  "Pat",
	}
}

func authApp(t *testing.T, cfg *config.Config) (*fiber.App, func() []models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	app := fiber.New()
	app.Use(Auth(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "role": UserRole(c)})
	})
	users := func() []models.User {
		var out []models.User
		require.NoError(t, db.Find(&out).Error)
		return out
	}
	return app, users
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthVerifiesSignature(t *testing.T) {
	app, users := authApp(t, &config.Config{JWTSecret: secret, Env: "production"})

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, signed(t, "wrong", claimsFor("sub_1", "user"))))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, signed(t, secret, claimsFor("", "user"))))
	assert.Empty(t, users())

	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, secret, claimsFor("sub_1", "manager"))))
	all := users()
	require.Len(t, all, 1)
	assert.Equal(t, "sub_1", *all[0].Subject)
	assert.Equal(t, models.UserRoleManager, all[0].Role)
	assert.Equal(t, "Pat", all[0].DisplayName)

	// Second visit reuses the row and syncs the role
	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, secret, claimsFor("sub_1", "admin"))))
	all = users()
	require.Len(t, all, 1)
	assert.Equal(t, models.UserRoleAdmin, all[0].Role)
}

func TestAuthRejectsExpired(t *testing.T) {
	app, _ := authApp(t, &config.Config{JWTSecret: secret, Env: "production"})
	c := claimsFor("sub_1", "user")
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, signed(t, secret, c)))
}

func TestAuthUnverifiedOnlyInDevelopment(t *testing.T) {
	token := signed(t, "anything", claimsFor("sub_dev", "user"))

	dev, _ := authApp(t, &config.Config{Env: "development"})
	assert.Equal(t, fiber.StatusOK, get(t, dev, token))

	prod, _ := authApp(t, &config.Config{Env: "production"})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, prod, token))
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserRole, c.Get("X-Role"))
		return c.Next()
	})
	app.Get("/", RequireRole("admin", "manager"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for role, want := range map[string]int{
		"admin":   fiber.StatusOK,
		"manager": fiber.StatusOK,
		"user":    fiber.StatusForbidden,
		"":        fiber.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Role", role)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

type fakeChecker struct {
	organizer uuid.UUID
	err       error
}

func (f fakeChecker) IsLeagueOrganizer(_ context.Context, _, userID uuid.UUID, role models.UserRole) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return role == models.UserRoleAdmin || userID == f.organizer, nil
}

func TestRequireLeagueOrganizer(t *testing.T) {
	organizer, player := uuid.New(), uuid.New()
	knownSeason := uuid.New()
	seasonLeague := func(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
		if id == knownSeason {
			return uuid.New(), nil
		}
		return uuid.Nil, services.ErrNotFound
	}

	newApp := func(checker OrganizerChecker) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(LocalUserID, c.Get("X-User"))
			c.Locals(LocalUserRole, c.Get("X-Role"))
			return c.Next()
		})
		ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
		app.Post("/leagues/:leagueID", RequireLeagueOrganizer(checker, LeagueFromParam("leagueID")), ok)
		app.Post("/seasons/:seasonID", RequireLeagueOrganizer(checker, LeagueFromSeasonParam("seasonID", seasonLeague)), ok)
		return app
	}
	app := newApp(fakeChecker{organizer: organizer})

	tests := []struct {
		name string
		path string
		user uuid.UUID
		role string
		want int
	}{
		{"organizer", "/leagues/" + uuid.NewString(), organizer, "user", fiber.StatusOK},
		{"player", "/leagues/" + uuid.NewString(), player, "user", fiber.StatusForbidden},
		{"admin", "/leagues/" + uuid.NewString(), player, "admin", fiber.StatusOK},
		{"bad league id", "/leagues/nope", organizer, "user", fiber.StatusBadRequest},
		{"season organizer", "/seasons/" + knownSeason.String(), organizer, "user", fiber.StatusOK},
		{"unknown season", "/seasons/" + uuid.NewString(), organizer, "user", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set("X-User", tt.user.String())
			req.Header.Set("X-Role", tt.role)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	failing := newApp(fakeChecker{err: errors.New("db down")})
	req := httptest.NewRequest(http.MethodPost, "/leagues/"+uuid.NewString(), nil)
	req.Header.Set("X-User", organizer.String())
	resp, err := failing.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
