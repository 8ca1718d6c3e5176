package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/portfolio-web/apiserver/config"
	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/db"
	"github.com/portfolio-web/apiserver/internal/handlers"
	"github.com/portfolio-web/apiserver/internal/identity"
	"github.com/portfolio-web/apiserver/internal/mq"
	"github.com/portfolio-web/apiserver/internal/ratelimit"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/internal/storage"
	"github.com/portfolio-web/apiserver/internal/store"
)

const contactRateLimitScope = "contact"

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	storage    *storage.Storage
	mq         *mq.MQ
	redis      *goredis.Client
	logger     *slog.Logger
}

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	Resolver    handlers.CallerResolver
	Profiles    *services.ProfileService
	Quotes      *services.QuoteService
	Gallery     *services.GalleryService
	Notes       *services.NoteService
	News        *services.NewsService
	Contact     *services.ContactService
	ContactRate handlers.RateLimiter
}

// New constructs a Server from configuration, connecting to every
// configured backend.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{db: dbConn, logger: logger}
	if err := s.connect(ctx, cfg); err != nil {
		_ = s.Shutdown(context.Background())
		return nil, err
	}

	provider, err := identity.NewFromConfig(ctx, cfg.Identity)
	if err != nil {
		_ = s.Shutdown(context.Background())
		return nil, fmt.Errorf("init identity provider: %w", err)
	}

	profileRepo := store.NewProfileRepository(dbConn)

	var limiter *ratelimit.Limiter
	if s.redis != nil {
		limiter = ratelimit.NewLimiter(s.redis, contactRateLimitScope, cfg.RateLimit.ContactMax, cfg.RateLimit.ContactWindow, logger)
	}

	s.router = NewRouter(Dependencies{
		Resolver:    auth.NewAuthenticator(cfg.Identity.SessionCookies, provider, profileRepo, logger),
		Profiles:    services.NewProfileService(profileRepo, s.storage, logger),
		Quotes:      services.NewQuoteService(store.NewQuoteRepository(dbConn)),
		Gallery:     services.NewGalleryService(store.NewGalleryRepository(dbConn), s.storage, logger),
		Notes:       services.NewNoteService(store.NewNoteRepository(dbConn)),
		News:        services.NewNewsService(store.NewNewsRepository(dbConn)),
		Contact:     services.NewContactService(store.NewContactRepository(dbConn), s.mq, cfg.MQ.ContactChannel, logger),
		ContactRate: limiter,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// connect opens the optional backends: blob storage, message queue, Redis.
func (s *Server) connect(ctx context.Context, cfg config.Config) error {
	blobs, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	s.storage = blobs
	if blobs.Enabled() {
		if err := blobs.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure bucket %q: %w", blobs.Bucket(), err)
		}
	}

	queue, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		return fmt.Errorf("init mq: %w", err)
	}
	s.mq = queue

	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		s.redis = client
	} else {
		s.logger.Info("redis not configured, contact form is not rate limited")
	}
	return nil
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Dependencies) *chi.Mux {
	guard := handlers.NewGuard(deps.Resolver)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.With(guard.Require(auth.Authenticated, nil)).Get("/me", handlers.MeHandler(deps.Profiles))
	router.Route("/profiles", func(r chi.Router) {
		handlers.ProfileRouter(r, deps.Profiles, guard)
	})
	router.Route("/quotes", func(r chi.Router) {
		handlers.QuoteRouter(r, deps.Quotes, guard)
	})
	router.Route("/gallery", func(r chi.Router) {
		handlers.GalleryRouter(r, deps.Gallery, guard)
	})
	router.Route("/notes", func(r chi.Router) {
		handlers.NoteRouter(r, deps.Notes, guard)
	})
	router.Route("/news", func(r chi.Router) {
		handlers.NewsRouter(r, deps.News, guard)
	})
	router.Route("/contact", func(r chi.Router) {
		handlers.ContactRouter(r, deps.Contact, deps.ContactRate, guard)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	if s.mq != nil {
		errs = append(errs, s.mq.Close())
	}
	if s.storage != nil {
		errs = append(errs, s.storage.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
