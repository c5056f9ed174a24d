// Package middleware contains HTTP middleware functions for the league API.
// Middleware sits between the HTTP server and route handlers. It runs on every
// request that passes through it, which makes it the right place for authentication
// and access control.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies the JSON Web Token from the Authorization header
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/config"
	"github.com/trentd187/matchplay-league/internal/models"
	// gorm is used here to find or create the user record on first visit
	"gorm.io/gorm"
)

// Keys under which Auth stores the caller in c.Locals.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
)

// Claims defines the data we expect inside a bearer token.
// Subject identifies the user at the identity provider; the custom claims fill in
// our users table the first time we see them:
//
//	"role":  "admin" | "manager" | "user"
//	"email": the user's primary email address
//	"name":  display name used on scorecards and standings
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Auth returns a Fiber middleware handler that:
//  1. Validates the JWT from the "Authorization: Bearer <token>" header
//  2. Finds the matching user in our database (or creates one on first visit)
//  3. Syncs the user's role from the token into the database
//  4. Stores the user's internal UUID and role in c.Locals for the handlers
//
// Tokens are verified as HS256 with cfg.JWTSecret. Only in development with no secret
// configured are tokens accepted without a signature check.
func Auth(cfg *config.Config, db *gorm.DB, log *slog.Logger) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := parseClaims(parser, cfg, tokenStr)
		if err != nil {
			log.Debug("rejected token", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		subject := claims.Subject
		if subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		// Lazy user sync: the first authenticated request creates the user's row
		user, err := syncUser(db.WithContext(c.UserContext()), subject, claims)
		if err != nil {
			log.Error("user sync failed", "subject", subject, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "database error",
			})
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserRole, string(user.Role))
		return c.Next()
	}
}

func parseClaims(parser *jwt.Parser, cfg *config.Config, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("no signing key configured")
		}
		if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func syncUser(db *gorm.DB, subject string, claims *Claims) (*models.User, error) {
	role := roleFromClaim(claims.Role)

	var user models.User
	err := db.Where("subject = ?", subject).First(&user).Error
	if err == nil {
		// Sync the role in case it changed at the identity provider
		if claims.Role != "" && user.Role != role {
			if err := db.Model(&user).Update("role", role).Error; err != nil {
				return nil, err
			}
			user.Role = role
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := claims.Email
	if email == "" {
		// Placeholder that is unique per subject and clearly not a real address
		email = fmt.Sprintf("%s@users.invalid", subject)
	}
	name := claims.Name
	if name == "" {
		name = "Player"
	}

	user = models.User{
		Subject:     &subject,
		DisplayName: name,
		Email:       email,
		Role:        role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// roleFromClaim converts the raw role string from the token into our typed UserRole.
// A missing or unrecognised claim is treated as the least privileged role.
func roleFromClaim(s string) models.UserRole {
	switch s {
	case "admin":
		return models.UserRoleAdmin
	case "manager":
		return models.UserRoleManager
	default:
		return models.UserRoleUser
	}
}

// UserID returns the authenticated caller's ID as stored by Auth.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	s, _ := c.Locals(LocalUserID).(string)
	return uuid.Parse(s)
}

// UserRole returns the authenticated caller's global role as stored by Auth.
func UserRole(c *fiber.Ctx) models.UserRole {
	s, _ := c.Locals(LocalUserRole).(string)
	return models.UserRole(s)
}
