// Package app initializes and runs the back-office server: configuration,
// logging, database, migrations, services, and the HTTP transport.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/config"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/email"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/httpapi"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/logging"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/repositories/repomanager"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	server *httpapi.Server
}

// NewApp wires the whole service together. The .env file is optional;
// explicit environment variables and flags win over it.
func NewApp() (*App, error) {
	// a missing .env file is normal outside development
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()

	sender := email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)

	userSvc := services.NewUserService(db, repos, cfg, logger)
	contactSvc := services.NewContactService(db, repos, sender, cfg.OperatorEmail, logger)
	contentSvc := services.NewContentService(db, repos, cfg, logger)

	server := httpapi.NewServer(cfg, logger, db, userSvc, contactSvc, contentSvc)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		repos:  repos,
		server: server,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run migrates the database and serves until interrupted.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	defer app.db.Close()
	return app.server.Run(ctx)
}
