package api

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/illegalcall/tracys-match/internal/activity"
	"github.com/illegalcall/tracys-match/internal/config"
	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/photos"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/profiles"
	"github.com/illegalcall/tracys-match/internal/session"
	"github.com/illegalcall/tracys-match/pkg/database"
)

//go:embed views
var viewsFS embed.FS

// Backend is what the pages need from Supabase. *supabase.Client
// implements it.
type Backend interface {
	SignUp(email, password, redirectTo string) (*supabase.Session, error)
	SignIn(email, password string) (supabase.Session, error)
	Refresh(refreshToken string) (supabase.Session, error)
	SignOut(accessToken string) error
	GetUser(accessToken string) (supabase.User, error)
	SendPasswordReset(email, redirectTo string) error
	ExchangeRecoveryCode(code, redirectTo string) (supabase.Session, error)
	UpdatePassword(accessToken, password string) error

	photos.Uploader
}

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	db       *database.Clients
	backend  Backend
	profiles profiles.Store
	sessions *session.Store
	tokens   *session.Tokens
	feed     *activity.Feed
	activity activity.Publisher
	logger   *slog.Logger
}

func NewServer(cfg *config.Config, db *database.Clients, backend Backend, store profiles.Store, publisher activity.Publisher) (*Server, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		BodyLimit:             int(cfg.Storage.MaxSize)*5 + 1<<20,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		db:       db,
		backend:  backend,
		profiles: store,
		sessions: session.NewStore(db.Redis, cfg.Session.TTL),
		tokens:   session.NewTokens(cfg.Session.Secret, cfg.Session.TTL),
		feed:     activity.NewFeed(db.Redis),
		activity: publisher,
		logger:   slog.Default().With("component", "api"),
	}

	// Routes
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	authLimiter := limiter.New(limiter.Config{
		Max:        s.cfg.Server.MaxRequests,
		Expiration: s.cfg.Server.RequestTimeout,
	})

	// Public routes
	s.app.Get("/", cache.New(cache.Config{
		Expiration:   s.cfg.Server.CacheExpiration,
		CacheControl: true,
	}), s.handleLanding)

	s.app.Get("/signup", s.handleSignupPage)
	s.app.Post("/signup", authLimiter, s.handleSignup)
	s.app.Get("/login", s.handleLoginPage)
	s.app.Post("/login", authLimiter, s.handleLogin)
	s.app.Post("/login/reset", authLimiter, s.handleLoginReset)
	s.app.Get("/reset-password", s.handleResetPage)
	s.app.Post("/reset-password", authLimiter, s.handleUpdatePassword)
	s.app.Post("/reset-password/request", authLimiter, s.handleResetRequest)
	s.app.Post("/logout", s.handleLogout)

	// Signed in, any role
	s.app.Get("/choose-role", s.requireSession, s.handleChooseRolePage)
	s.app.Post("/choose-role", s.requireSession, s.handleChooseRole)

	// Role-gated dashboards
	curator := s.app.Group("/curator", s.requireRole(models.RoleCurator))
	curator.Get("/", s.handleCurator)
	curator.Post("/candidates", s.handleAddCandidate)
	curator.Post("/candidates/:id/status", s.handleCuratorStatus)

	dater := s.app.Group("/dater", s.requireRole(models.RoleDater))
	dater.Get("/", s.handleDater)
	dater.Post("/candidates/:id/status", s.handleDaterStatus)
	dater.Post("/profile", s.handleSaveProfile)
	dater.Post("/photos", s.handleUploadPhotos)

	// Monitoring
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.app.Get("/healthz", s.handleHealth)
}

func (s *Server) Start() error {
	s.logger.Info("Server listening", "port", s.cfg.Server.Port)
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleLanding(c *fiber.Ctx) error {
	return c.Render("landing", fiber.Map{"Title": "Curated dating"})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.db.Redis.Ping(c.UserContext()).Err(); err != nil {
		s.logger.Error("Health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// renderError shows the dashboard failure page with a way back to login.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadGateway).Render("error", fiber.Map{
		"Title":   "Something went wrong",
		"Message": supabase.Message(err),
	})
}
