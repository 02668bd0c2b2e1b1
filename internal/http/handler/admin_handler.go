package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
	"github.com/varkes/adshort/internal/http/middleware"
	"go.uber.org/zap"
)

// AdminDeps groups dependencies required by the admin CRUD handlers.
type AdminDeps struct {
	Logger *zap.Logger
	Ads    repository.AdSnippetRepository
	Users  repository.UserRepository
}

// AdminHandler implements ad-snippet and user management, admin only.
type AdminHandler struct {
	logger *zap.Logger
	ads    repository.AdSnippetRepository
	users  repository.UserRepository
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{logger: logger, ads: deps.Ads, users: deps.Users}
}

// Register wires admin routes behind the admin gate.
func (h *AdminHandler) Register(router fiber.Router) {
	ads := router.Group("/api/ads", middleware.RequireAdmin())
	ads.Get("/", h.ListAds)
	ads.Post("/", h.CreateAd)
	ads.Put("/:id", h.UpdateAd)
	ads.Delete("/:id", h.DeleteAd)

	users := router.Group("/api/users", middleware.RequireAdmin())
	users.Get("/", h.ListUsers)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}

// --- Ad snippets ---

type adRequest struct {
	Name   string `json:"name"`
	HTML   string `json:"html"`
	Active *bool  `json:"active,omitempty"`
}

// ListAds handles GET /api/ads.
func (h *AdminHandler) ListAds(c *fiber.Ctx) error {
	ads, err := h.ads.List(userContext(c))
	if err != nil {
		h.logger.Error("failed to list ads", zap.Error(err))
		return serverError(c)
	}
	if ads == nil {
		ads = []model.AdSnippet{}
	}
	return c.JSON(ads)
}

// CreateAd handles POST /api/ads.
func (h *AdminHandler) CreateAd(c *fiber.Ctx) error {
	var req adRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.HTML == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and html content are required",
		})
	}

	ad := &model.AdSnippet{Name: req.Name, HTML: req.HTML, Active: true}
	if req.Active != nil {
		ad.Active = *req.Active
	}
	if err := h.ads.Create(userContext(c), ad); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "an ad snippet with that name already exists",
			})
		}
		h.logger.Error("failed to create ad", zap.Error(err))
		return serverError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

// UpdateAd handles PUT /api/ads/:id.
func (h *AdminHandler) UpdateAd(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var req adRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := userContext(c)
	ad, err := h.ads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "ad snippet not found"})
		}
		h.logger.Error("failed to load ad", zap.Error(err))
		return serverError(c)
	}

	if req.Name != "" {
		ad.Name = req.Name
	}
	if req.HTML != "" {
		ad.HTML = req.HTML
	}
	if req.Active != nil {
		ad.Active = *req.Active
	}

	if err := h.ads.Update(ctx, ad); err != nil {
		h.logger.Error("failed to update ad", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(ad)
}

// DeleteAd handles DELETE /api/ads/:id.
func (h *AdminHandler) DeleteAd(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err := h.ads.Delete(userContext(c), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "ad snippet not found"})
		}
		h.logger.Error("failed to delete ad", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(fiber.Map{"message": "ad snippet removed"})
}

// --- Users ---

type userUpdateRequest struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	IsAdmin   *bool  `json:"isAdmin,omitempty"`
	IsPremium *bool  `json:"isPremium,omitempty"`
}

// ListUsers handles GET /api/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(userContext(c))
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		return serverError(c)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	user, err := h.users.GetByID(userContext(c), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		h.logger.Error("failed to load user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id; admins can flip role and
// premium flags.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var req userUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx := userContext(c)
	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		h.logger.Error("failed to load user", zap.Error(err))
		return serverError(c)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsPremium != nil {
		user.IsPremium = *req.IsPremium
	}

	if err := h.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already in use"})
		}
		h.logger.Error("failed to update user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id. The user's links are left
// ownerless.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err := h.users.Delete(userContext(c), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		h.logger.Error("failed to delete user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(fiber.Map{"message": "user removed"})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
