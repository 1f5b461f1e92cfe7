package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/application/service"
	"github.com/garyjia/expense-flow/internal/config"
	"github.com/garyjia/expense-flow/internal/infrastructure/external/exchange"
	"github.com/garyjia/expense-flow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/expense-flow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/expense-flow/internal/interfaces/http"
	"github.com/garyjia/expense-flow/pkg/database"
	"github.com/garyjia/expense-flow/pkg/utils"
)

func main() {
	// Local overrides from .env, ignored when absent
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ExpenseFlow approval engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	ruleRepo := repository.NewRuleRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	companyRepo := repository.NewCompanyRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	converter := exchange.NewClient(logger,
		exchange.WithBaseURL(cfg.Exchange.BaseURL),
		exchange.WithCacheTTL(cfg.Exchange.CacheTTL))

	appLogger := utils.NewSugaredAdapter(logger)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, appLogger)
	expenseService := service.NewExpenseService(
		expenseRepo, requestRepo, ruleRepo, userRepo, companyRepo, txManager, converter, appLogger)
	decisionService := service.NewDecisionService(
		expenseRepo, requestRepo, ruleRepo, txManager, notificationService, appLogger)
	overrideService := service.NewOverrideService(
		expenseRepo, requestRepo, txManager, notificationService, appLogger)
	ruleService := service.NewRuleService(ruleRepo, userRepo, txManager, appLogger)
	userService := service.NewUserService(userRepo, expenseRepo, txManager, appLogger)
	reportService := service.NewReportService(expenseRepo, userRepo, companyRepo, appLogger)

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		issuer,
		httpserver.Services{
			Expense:      expenseService,
			Decision:     decisionService,
			Override:     overrideService,
			Rule:         ruleService,
			User:         userService,
			Notification: notificationService,
			Report:       reportService,
		},
		appLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
