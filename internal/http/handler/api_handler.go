package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/service"
	"github.com/varkes/adshort/internal/http/middleware"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by the link API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService *service.LinkService
	BaseURL     string
}

// APIHandler implements the link management API.
type APIHandler struct {
	logger  *zap.Logger
	links   *service.LinkService
	baseURL string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:  logger,
		links:   deps.LinkService,
		baseURL: strings.TrimSuffix(deps.BaseURL, "/"),
	}
}

// Register wires link API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")

	// Anonymous creation is allowed; identity, when present, becomes
	// the owner.
	api.Post("/shorten", h.CreateLink)
	api.Post("/links", h.CreateLink)

	api.Get("/links", middleware.RequireAuth(), h.ListLinks)
	api.Put("/links/:id", middleware.RequireAuth(), h.UpdateLink)
	api.Delete("/links/:id", middleware.RequireAuth(), h.DeleteLink)
	api.Get("/links/:shortId/stats", middleware.RequireAuth(), h.LinkStats)
}

// CreateLinkRequest is the request body for shortening a URL.
type CreateLinkRequest struct {
	OriginalURL string     `json:"originalUrl"`
	Alias       string     `json:"alias,omitempty"`
	Password    string     `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// CreateLinkResponse is the response body for a shortened URL.
type CreateLinkResponse struct {
	ShortURL    string `json:"shortUrl"`
	OriginalURL string `json:"originalUrl"`
	ShortID     string `json:"shortId"`
}

// CreateLink handles POST /api/shorten and POST /api/links.
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.OriginalURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "originalUrl is required",
		})
	}

	input := service.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		Alias:       req.Alias,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
	}
	if ident := middleware.IdentityFrom(c); ident.Authenticated {
		owner := ident.UserID
		input.OwnerID = &owner
	}

	link, err := h.links.CreateLink(userContext(c), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL),
			errors.Is(err, service.ErrForbiddenHost),
			errors.Is(err, service.ErrInvalidAlias):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrAliasTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			h.logger.Error("failed to create link", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create link",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(CreateLinkResponse{
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, link.Code),
		OriginalURL: link.OriginalURL,
		ShortID:     link.Code,
	})
}

// ListLinks handles GET /api/links.
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	ident := middleware.IdentityFrom(c)

	links, err := h.links.ListLinks(userContext(c), ident.UserID)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}
	if links == nil {
		links = []model.Link{}
	}
	return c.JSON(links)
}

// UpdateLinkRequest is the partial-update body. Absent fields mean
// "no change"; an explicit empty password clears the gate.
type UpdateLinkRequest struct {
	OriginalURL *string    `json:"originalUrl,omitempty"`
	Alias       *string    `json:"alias,omitempty"`
	Enabled     *bool      `json:"enabled,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Password    *string    `json:"password,omitempty"`
}

// UpdateLink handles PUT /api/links/:id.
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid link id",
		})
	}

	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ident := middleware.IdentityFrom(c)
	link, err := h.links.UpdateLink(userContext(c), id, ident.UserID, ident.IsAdmin, service.UpdateLinkInput{
		OriginalURL: req.OriginalURL,
		Alias:       req.Alias,
		Enabled:     req.Enabled,
		ExpiresAt:   req.ExpiresAt,
		Password:    req.Password,
	})
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(link)
}

// DeleteLink handles DELETE /api/links/:id.
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid link id",
		})
	}

	ident := middleware.IdentityFrom(c)
	if err := h.links.DeleteLink(userContext(c), id, ident.UserID, ident.IsAdmin); err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(fiber.Map{"message": "link removed"})
}

// LinkStats handles GET /api/links/:shortId/stats.
func (h *APIHandler) LinkStats(c *fiber.Ctx) error {
	ident := middleware.IdentityFrom(c)

	stats, err := h.links.Stats(userContext(c), c.Params("shortId"), ident.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found or you do not own it",
			})
		}
		h.logger.Error("failed to aggregate stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch stats",
		})
	}
	return c.JSON(stats)
}

func (h *APIHandler) mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "link not found",
		})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "you do not own this link",
		})
	case errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrForbiddenHost),
		errors.Is(err, service.ErrInvalidAlias):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrAliasTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error("link mutation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
