package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-cookie-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

type App struct {
	config *Config
	db     *bun.DB
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

// GetLogger returns a named child of the application logger
func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	lgr := glog.NewLogger(
		glog.WithName("app"),
		glog.WithLoggerType(cfg.LogFormat),
		glog.WithLevel(cfg.Level()),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	lgr.Debug("configuration loaded", "config", print.MaybePrettyJSON(cfg))

	if msg := cfg.Auth.Mismatch(); msg != "" {
		lgr.Warn("session cookie and token lifetimes differ", "detail", msg)
	}

	ctx := context.Background()
	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		return err
	}
	defer app.db.Close()

	WithHTTPServer(app)

	errCh := make(chan error, 1)
	go func() {
		lgr.Info("http server listening", "addr", cfg.HTTPAddr)
		errCh <- app.srv.Serve(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, errors.CategoryInternal, "http server stopped")
	case sig := <-WaitExitSignal():
		lgr.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	return app.srv.Shutdown(shutdownCtx)
}

// WithPersistence opens the database and applies the migrations
func WithPersistence(ctx context.Context, app *App) error {
	db, err := auth.OpenDatabase(app.config.DatabaseDriver, app.config.DatabaseDSN)
	if err != nil {
		return err
	}

	if err := auth.Migrate(ctx, db, app.config.DatabaseDriver); err != nil {
		db.Close()
		return err
	}

	app.db = db
	return nil
}

// WithHTTPServer wires the auth services and mounts the routes
func WithHTTPServer(app *App) {
	cfg := app.config.Auth
	_, logger := auth.ResolveLogger("auth", app.logger, nil)

	repo := auth.NewRepositoryManager(app.db,
		auth.WithUsersHasher(auth.NewBcryptHasher(cfg.GetBcryptCost())),
		auth.WithUsersLogger(logger),
	)
	repo.MustValidate()

	users := repo.Users()

	auther := auth.NewAuthenticator(users, cfg).
		WithLogger(logger).
		WithActivitySink(auth.NewLoggerActivitySink(logger))

	httpAuth := auth.NewHTTPAuthenticator(auther, cfg).WithLogger(logger)
	httpAuth.WithValidationListeners(auth.IdentityListener(cfg.GetContextKey(),
		func(c router.Context, identity *auth.RequestIdentity) error {
			logger.Debug("authenticated request",
				"user_id", identity.SubjectID(),
				"path", c.Path(),
			)
			return nil
		}),
	)

	controller := auth.NewAuthController(auther, httpAuth,
		auth.WithControllerLogger(logger),
		auth.WithRepository(repo),
	)

	app.srv = router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:               "go-cookie-auth",
			DisableStartupMessage: true,
		}))
	})

	app.srv.Router().WithLogger(app.GetLogger("router"))

	auth.RegisterAuthRoutes(app.srv.Router(), controller)
}

func WaitExitSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
