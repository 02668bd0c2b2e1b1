package handler

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/varkes/adshort/internal/app/model"
	"github.com/varkes/adshort/internal/app/repository"
	"github.com/varkes/adshort/internal/app/service"
	httputil "github.com/varkes/adshort/internal/http/util"
	"github.com/varkes/adshort/internal/http/view"
	infraprom "github.com/varkes/adshort/internal/infra/prometheus"
	"go.uber.org/zap"
)

const continueTokenTTL = 60 * time.Second

// RedirectDeps groups dependencies required by the redirect handlers.
type RedirectDeps struct {
	Logger    *zap.Logger
	Resolver  *service.Resolver
	Ads       repository.AdSnippetRepository
	Registrar *ClickRegistrar
	Secret    []byte
	// Replay tracks redeemed continue tokens. Defaults to a
	// process-local guard when nil.
	Replay httputil.ReplayGuard
}

// RedirectHandler implements the short-code resolution path: gating,
// click accounting and the final redirect or ad interstitial.
type RedirectHandler struct {
	logger    *zap.Logger
	resolver  *service.Resolver
	ads       repository.AdSnippetRepository
	registrar *ClickRegistrar
	tokens    *httputil.TokenSigner
	replay    httputil.ReplayGuard
}

// NewRedirectHandler creates a redirect handler.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	replay := deps.Replay
	if replay == nil {
		replay = httputil.NewMemoryReplayGuard()
	}
	return &RedirectHandler{
		logger:    logger,
		resolver:  deps.Resolver,
		ads:       deps.Ads,
		registrar: deps.Registrar,
		tokens:    httputil.NewTokenSigner(deps.Secret, continueTokenTTL),
		replay:    replay,
	}
}

// Register wires the redirect routes. Call this AFTER every other
// route: /:code is a catch-all and would shadow them otherwise.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/:code", h.Resolve)
	router.Get("/:code/_go/:token", h.Go)
}

// Resolve handles GET /:code.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")
	ctx := userContext(c)

	link, err := h.resolver.Resolve(ctx, code)
	if err != nil {
		return h.gateResponse(c, code, err)
	}

	// With an active ad configured, show the interstitial; the click
	// is recorded server-side on the continue hop. Without one, record
	// before responding and redirect directly.
	if ad, adErr := h.ads.GetActive(ctx); adErr == nil {
		return h.renderInterstitial(c, link, ad)
	} else if !errors.Is(adErr, repository.ErrNotFound) {
		h.logger.Error("failed to load active ad", zap.Error(adErr))
	}

	h.registrar.Register(ctx, link.ID, clickMetaFrom(c))
	infraprom.RedirectsTotal.WithLabelValues("direct").Inc()
	return c.Redirect(link.OriginalURL, fiber.StatusMovedPermanently)
}

// Go handles GET /:code/_go/:token, the interstitial continue hop.
// The signed token proves the interstitial was served recently; the
// click is recorded here, so blocked client-side scripts cannot cause
// undercounting.
func (h *RedirectHandler) Go(c *fiber.Ctx) error {
	code := c.Params("code")
	token := c.Params("token")

	if err := h.tokens.Validate(code, token); err != nil {
		if errors.Is(err, httputil.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to validate continue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to validate token",
		})
	}

	ctx := userContext(c)

	// A token is good for one click. Replays inside the signature
	// window get the same 401 as a forged token.
	if !h.replay.FirstUse(ctx, token, continueTokenTTL) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": httputil.ErrInvalidToken.Error(),
		})
	}

	// Re-run the gates: the link may have been disabled or expired
	// while the interstitial was on screen.
	link, err := h.resolver.Resolve(ctx, code)
	if err != nil {
		return h.gateResponse(c, code, err)
	}

	h.registrar.Register(ctx, link.ID, clickMetaFrom(c))
	infraprom.RedirectsTotal.WithLabelValues("interstitial").Inc()
	return c.Redirect(link.OriginalURL, fiber.StatusFound)
}

func (h *RedirectHandler) renderInterstitial(c *fiber.Ctx, link *model.Link, ad *model.AdSnippet) error {
	token, err := h.tokens.Issue(link.Code)
	if err != nil {
		h.logger.Error("failed to issue continue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to prepare redirect",
		})
	}

	html, err := view.RenderInterstitial(view.InterstitialData{
		Code:        link.Code,
		ContinueURL: fmt.Sprintf("/%s/_go/%s", link.Code, token),
		AdHTML:      template.HTML(ad.HTML),
		Seconds:     15,
	})
	if err != nil {
		h.logger.Error("failed to render interstitial", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.Type("html", "utf-8").SendString(html)
}

func (h *RedirectHandler) gateResponse(c *fiber.Ctx, code string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		infraprom.RedirectsTotal.WithLabelValues("not_found").Inc()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "short link not found",
		})
	case errors.Is(err, service.ErrLinkDisabled):
		infraprom.RedirectsTotal.WithLabelValues("disabled").Inc()
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "this link has been disabled",
		})
	case errors.Is(err, service.ErrLinkExpired):
		infraprom.RedirectsTotal.WithLabelValues("expired").Inc()
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "this link has expired",
		})
	case errors.Is(err, service.ErrPasswordRequired):
		// No password-submission flow exists; hard stop that never
		// reveals the destination.
		infraprom.RedirectsTotal.WithLabelValues("password_required").Inc()
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "this link is password protected",
		})
	default:
		infraprom.RedirectsTotal.WithLabelValues("error").Inc()
		h.logger.Error("failed to resolve link", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
