package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/service"
	"github.com/varkes/adshort/internal/http/middleware"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by the auth handlers.
type AuthDeps struct {
	Logger *zap.Logger
	Auth   *service.AuthService
	Keys   *service.APIKeyService
}

// AuthHandler implements signup, login and per-user API keys.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
	keys   *service.APIKeyService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, auth: deps.Auth, keys: deps.Keys}
}

// Register wires auth routes onto the provided router. Must be called
// before the admin handler: the API key routes live under /api/users,
// which the admin handler mounts behind an admin gate.
func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/api/auth")
	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)

	router.Post("/api/users/api-key", middleware.RequireAuth(), h.GenerateAPIKey)
	router.Delete("/api/users/api-key/:key", middleware.RequireAuth(), h.RevokeAPIKey)
}

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	token, user, err := h.auth.Signup(userContext(c), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "please provide a valid email and a password of at least 6 characters",
			})
		case errors.Is(err, service.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "user already exists",
			})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "server error during signup",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(tokenResponse{Token: token, Email: user.Email})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "please provide email and password",
		})
	}

	token, user, err := h.auth.Login(userContext(c), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}
		h.logger.Error("login failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error during login",
		})
	}

	return c.JSON(tokenResponse{Token: token, Email: user.Email})
}

// GenerateAPIKey handles POST /api/users/api-key. The plaintext key
// appears in this response only.
func (h *AuthHandler) GenerateAPIKey(c *fiber.Ctx) error {
	ident := middleware.IdentityFrom(c)

	key, err := h.keys.Generate(userContext(c), ident.UserID)
	if err != nil {
		h.logger.Error("failed to generate api key", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error while generating key",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"apiKey":  key,
		"message": "API key generated. Save it now, you won't see it again.",
	})
}

// RevokeAPIKey handles DELETE /api/users/api-key/:key.
func (h *AuthHandler) RevokeAPIKey(c *fiber.Ctx) error {
	ident := middleware.IdentityFrom(c)

	if err := h.keys.Revoke(userContext(c), ident.UserID, c.Params("key")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "API key not found",
			})
		}
		h.logger.Error("failed to revoke api key", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error while revoking key",
		})
	}

	return c.JSON(fiber.Map{"message": "API key revoked"})
}
