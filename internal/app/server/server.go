package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/varkes/adshort/config"
	"github.com/varkes/adshort/internal/app/repository"
	"github.com/varkes/adshort/internal/app/service"
	inthttp "github.com/varkes/adshort/internal/http/handler"
	"github.com/varkes/adshort/internal/http/middleware"
	httputil "github.com/varkes/adshort/internal/http/util"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs.
type Dependencies struct {
	Logger *zap.Logger
	Config *config.Config

	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	NATS      *nats.Conn
	JetStream nats.JetStreamContext

	Links  repository.LinkRepository
	Clicks repository.ClickRepository
	Users  repository.UserRepository
	Ads    repository.AdSnippetRepository

	LinkService *service.LinkService
	AuthService *service.AuthService
	KeyService  *service.APIKeyService
	Resolver    *service.Resolver
	Recorder    *service.ClickRecorder
	Publisher   *service.ClickPublisher
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates the HTTP server with middleware and routes wired.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{app: app, deps: deps}
	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, s.deps.Config.RateLimit, s.deps.Logger))
	}
	s.app.Use(middleware.Identity(s.deps.AuthService))
}

func (s *Server) registerRoutes() {
	registrar := &inthttp.ClickRegistrar{
		Publisher: s.deps.Publisher,
		Recorder:  s.deps.Recorder,
		Logger:    s.deps.Logger,
	}

	inthttp.NewHealthHandler(s.deps.Postgres).Register(s.app)

	inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger: s.deps.Logger,
		Auth:   s.deps.AuthService,
		Keys:   s.deps.KeyService,
	}).Register(s.app)

	inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.LinkService,
		BaseURL:     s.deps.Config.Server.BaseURL,
	}).Register(s.app)

	inthttp.NewClickHandler(inthttp.ClickDeps{
		Logger:    s.deps.Logger,
		Links:     s.deps.Links,
		Registrar: registrar,
	}).Register(s.app)

	inthttp.NewAdminHandler(inthttp.AdminDeps{
		Logger: s.deps.Logger,
		Ads:    s.deps.Ads,
		Users:  s.deps.Users,
	}).Register(s.app)

	var replay httputil.ReplayGuard = httputil.NewMemoryReplayGuard()
	if s.deps.Redis != nil {
		replay = httputil.NewRedisReplayGuard(s.deps.Redis)
	}

	// The catch-all /:code route goes last so it cannot shadow the
	// API and health routes above.
	inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:    s.deps.Logger,
		Resolver:  s.deps.Resolver,
		Ads:       s.deps.Ads,
		Registrar: registrar,
		Secret:    []byte(s.deps.Config.Auth.RedirectSecret),
		Replay:    replay,
	}).Register(s.app)
}
