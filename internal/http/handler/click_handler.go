package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/repository"
	"go.uber.org/zap"
)

// ClickDeps groups dependencies of the fire-and-forget click endpoint.
type ClickDeps struct {
	Logger    *zap.Logger
	Links     repository.LinkRepository
	Registrar *ClickRegistrar
}

// ClickHandler implements POST /api/click, used by external
// integrations to register a click out of band.
type ClickHandler struct {
	logger    *zap.Logger
	links     repository.LinkRepository
	registrar *ClickRegistrar
}

// NewClickHandler creates a click registration handler.
func NewClickHandler(deps ClickDeps) *ClickHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickHandler{logger: logger, links: deps.Links, registrar: deps.Registrar}
}

// Register wires the click route onto the provided router.
func (h *ClickHandler) Register(router fiber.Router) {
	router.Post("/api/click", h.RegisterClick)
}

type registerClickRequest struct {
	LinkID uint `json:"linkId"`
}

// RegisterClick handles POST /api/click. Recording failures are
// logged and swallowed; the response is 201 whenever the link exists.
func (h *ClickHandler) RegisterClick(c *fiber.Ctx) error {
	var req registerClickRequest
	if err := c.BodyParser(&req); err != nil || req.LinkID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "linkId is required",
		})
	}

	ctx := userContext(c)
	link, err := h.links.GetByID(ctx, req.LinkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		h.logger.Error("failed to load link for click", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	h.registrar.Register(ctx, link.ID, clickMetaFrom(c))
	return c.SendStatus(fiber.StatusCreated)
}
