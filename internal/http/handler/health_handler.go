package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler answers liveness probes on / and /health.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a health handler. The pool may be nil in
// tests; the database check is then skipped.
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Register wires the health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health reports service status, including database reachability.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	if h.pool != nil {
		if err := h.pool.Ping(userContext(c)); err != nil {
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"service": "adshort",
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
