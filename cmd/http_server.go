package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/auth"
	authpostgres "github.com/rahmatfauzi/modular-backend/internal/auth/postgres"
	authredis "github.com/rahmatfauzi/modular-backend/internal/auth/redis"
	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
	"github.com/rahmatfauzi/modular-backend/internal/mail"
	"github.com/rahmatfauzi/modular-backend/internal/note"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
	"github.com/rahmatfauzi/modular-backend/internal/transport/rest"
	"github.com/rahmatfauzi/modular-backend/internal/user"
	userpostgres "github.com/rahmatfauzi/modular-backend/internal/user/postgres"
	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Format, cfg.Logging.Level)
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	denylist, err := initDenylist(cfg, gormDB)
	if err != nil {
		return nil, err
	}
	// the database-backed store accumulates rows; Redis entries expire on
	// their own
	if pgDenylist, ok := denylist.(*authpostgres.Denylist); ok {
		go purgeExpiredTokens(pgDenylist, lg)
	}

	var mailer mail.Mailer
	if cfg.Mail.SMTPHost != "" {
		mailer = mail.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.From, cfg.Mail.ResetSubject, cfg.Mail.ResetURLTemplate)
	} else {
		mailer = mail.NewLogSender(lg)
	}

	va := validation.New()
	users := userpostgres.NewUserRepository(gormDB)

	tokens := auth.NewTokenService(users, denylist, cfg.Security.JWTSecret, cfg.Security.AccessTokenTTL, lg)
	passwords := auth.NewPasswordService(gormDB, users, mailer, cfg.Security.JWTSecret, cfg.Security.ResetTokenTTL, cfg.Security.BcryptCost, lg)

	// a password change invalidates the session that made it
	if cfg.Security.RevocationEnabled {
		passwords.OnPasswordChanged(func(ctx context.Context, userID int64, bearerToken string) error {
			if bearerToken == "" {
				return nil
			}
			if appErr := tokens.RevokeAccessToken(ctx, bearerToken); appErr != nil {
				return appErr
			}
			return nil
		})
	}

	base := transport.NewBaseHandler(lg)

	userCrud, err := user.NewCrudService(gormDB, va, cfg.Security.BcryptCost, cfg.API.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build user service: %w", err)
	}
	noteCrud, err := note.NewCrudService(gormDB, va, cfg.API.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build note service: %w", err)
	}

	userResource := transport.NewResourceHandler(base, userCrud,
		func() interface{} { return &user.CreateUserDTO{} },
		func() interface{} { return &user.UpdateUserDTO{} },
	)
	noteResource := transport.NewResourceHandler(base, noteCrud,
		func() interface{} { return &note.CreateNoteDTO{} },
		func() interface{} { return &note.UpdateNoteDTO{} },
	)

	authHandler := auth.NewHandler(base, tokens, passwords, va)
	userHandler := user.NewHandler(base)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, base, tokens, authHandler, userHandler, userResource, noteResource, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// purgeExpiredTokens periodically removes denylist rows whose token has
// expired anyway.
func purgeExpiredTokens(denylist *authpostgres.Denylist, lg *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		purged, err := denylist.PurgeExpired(ctx)
		cancel()
		if err != nil {
			lg.Error("denylist purge failed", "error", err)
			continue
		}
		if purged > 0 {
			lg.Info("purged expired denylist entries", "count", purged)
		}
	}
}

// initDenylist picks the revoked-token store: Redis when configured, the
// database otherwise. Disabled revocation returns nil and tokens stay valid
// until expiry.
func initDenylist(cfg *internal.Config, gormDB *gorm.DB) (auth.Denylist, error) {
	if !cfg.Security.RevocationEnabled {
		return nil, nil
	}
	if cfg.Redis.Addr != "" {
		client, err := authredis.Connect(context.Background(), authredis.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		return authredis.NewDenylist(client), nil
	}
	return authpostgres.NewDenylist(gormDB), nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
