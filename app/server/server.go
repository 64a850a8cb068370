// Package server assembles the API server from its components and manages
// its lifecycle.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"volunvibe/app/auth"
	"volunvibe/app/config"
	"volunvibe/app/controllers"
	"volunvibe/app/logging"
	"volunvibe/app/repositories"
	"volunvibe/app/routes"
	"volunvibe/app/services"
	"volunvibe/app/telemetry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Server is the HTTP listener of the API.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
	addr   net.Addr
}

// Addr returns the bound listen address once the server has started.
func (s *Server) Addr() string {
	if s.addr == nil {
		return s.srv.Addr
	}
	return s.addr.String()
}

func (s *Server) start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr()
	s.logger.Info("http server listening", zap.String("addr", s.Addr()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.srv.Shutdown(ctx)
}

// Module provides every component of the API. It expects a *config.Config
// to be supplied.
var Module = fx.Options(
	fx.Provide(
		logging.NewLogger,
		newStore,
		newRevocationList,
		newTokenService,
		newLedger,
		services.NewPostService,
		newControllers,
		newHandler,
		newServer,
	),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
	fx.Invoke(registerTracing, func(*Server) {}),
)

// New builds the application for cfg. Extra options are applied last.
func New(cfg *config.Config, opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{fx.Supply(cfg), Module}, opts...)...)
}

// Run starts the application and blocks until it receives a shutdown signal.
func Run(cfg *config.Config) error {
	app := New(cfg)

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return app.Stop(stopCtx)
}

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repositories.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func newRevocationList(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) auth.RevocationList {
	if cfg.RedisAddr == "" {
		return auth.NewMemoryRevocationList()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, token revocation checks will fail", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return auth.NewRedisRevocationList(client)
}

func newTokenService(cfg *config.Config, revoked auth.RevocationList) *auth.TokenService {
	return auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL, revoked)
}

func newLedger(store repositories.Store, cfg *config.Config, logger *zap.Logger) *services.Ledger {
	logger.Info("volunteer ledger ready", zap.String("mode", cfg.LedgerMode))
	return services.NewLedger(store, cfg.LedgerMode, logger)
}

func newControllers(
	cfg *config.Config,
	store repositories.Store,
	ledger *services.Ledger,
	postService *services.PostService,
	tokens *auth.TokenService,
	logger *zap.Logger,
) routes.Controllers {
	return routes.Controllers{
		Posts:    controllers.NewPostController(postService, logger),
		Requests: controllers.NewRequestController(ledger, logger),
		Auth:     controllers.NewAuthController(tokens, auth.CookiePolicy{Production: cfg.IsProduction()}, logger),
		Health:   controllers.NewHealthController(store, cfg.StoreDriver, logger),
	}
}

func newHandler(cfg *config.Config, c routes.Controllers, tokens *auth.TokenService, logger *zap.Logger) http.Handler {
	return routes.SetupRoutes(c, tokens, cfg.CORSOrigins, logger)
}

func newServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
	lc.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})
	return s
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	if cfg.OTELCollectorURL != "" {
		logger.Info("exporting traces", zap.String("collector", cfg.OTELCollectorURL))
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}
