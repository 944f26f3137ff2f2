package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/cache"
	"github.com/SAP-F-2025/quiz-runner/internal/config"
	"github.com/SAP-F-2025/quiz-runner/internal/handlers"
	"github.com/SAP-F-2025/quiz-runner/internal/repositories"
	"github.com/SAP-F-2025/quiz-runner/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-runner/internal/services"
	"github.com/SAP-F-2025/quiz-runner/internal/stream"
	"github.com/SAP-F-2025/quiz-runner/internal/utils"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
	"github.com/SAP-F-2025/quiz-runner/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	importFile := flag.String("import", "", "import a question bank file (json, csv, xlsx) into the database and exit")
	exportBank := flag.String("export-bank", "", "write the configured question bank to an xlsx file and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	slogger := utils.ToSlogLogger(logger)

	if err := run(cfg, logger, slogger, *importFile, *exportBank); err != nil {
		logger.LogError(err, "Quiz runner stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger, slogger *slog.Logger, importFile, exportBank string) error {
	ctx := context.Background()

	v := validator.New()
	importer := services.NewImportExportService(slogger, v)

	source, cleanup, err := bankSource(cfg, slogger)
	if err != nil {
		return err
	}
	defer cleanup()

	bankService := services.NewQuestionBankService(source, importer, v, slogger)

	switch {
	case importFile != "":
		result, err := bankService.SeedBank(ctx, importFile)
		if err != nil {
			return err
		}
		logger.Info("Question bank imported", "bank_id", cfg.QuestionBankID, "questions", result.SuccessCount)
		return nil
	case exportBank != "":
		return writeBankWorkbook(ctx, bankService, importer, exportBank)
	}

	bank, err := bankService.LoadBank(ctx)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}
	logger.Info("Question bank loaded", "source", cfg.QuestionSource, "questions", len(bank))

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := stream.NewHub(slogger)
	go hub.Run(hubCtx)

	sessionService, err := services.NewSessionService(
		bank,
		services.SessionConfig{DurationSeconds: cfg.SessionDuration, AutoAdvanceDelay: cfg.AutoAdvanceDelay},
		publisher,
		hub,
		importer,
		v,
		slogger,
	)
	if err != nil {
		return err
	}
	defer sessionService.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger))
	handlers.NewHandlerManager(sessionService, bankService, hub, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "ListenAndServe failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// bankSource wires the question bank backend selected by QUESTION_SOURCE
func bankSource(cfg *config.Config, logger *slog.Logger) (services.BankSource, func(), error) {
	source := services.BankSource{File: cfg.QuestionFile, BankID: cfg.QuestionBankID}
	cleanup := func() {}

	if cfg.QuestionSource != config.QuestionSourcePostgres {
		return source, cleanup, nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return source, cleanup, err
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return source, cleanup, fmt.Errorf("failed to migrate question bank tables: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		cleanup = func() { sqlDB.Close() }
	}

	repo := postgres.NewQuestionBankPostgreSQL(db)
	if cfg.BankCacheEnabled {
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, question bank cache disabled", "error", err)
		} else {
			closeDB := cleanup
			cleanup = func() {
				client.Close()
				closeDB()
			}
			repo = repositories.NewCachedQuestionBankRepository(repo, cache.NewRedisCache(client, logger), cfg.BankCacheTTL, logger)
		}
	}

	source.File = ""
	source.Repository = repo
	return source, cleanup, nil
}

func writeBankWorkbook(ctx context.Context, bankService services.QuestionBankService, exporter services.ImportExportService, path string) error {
	bank, err := bankService.LoadBank(ctx)
	if err != nil {
		return err
	}

	data, err := exporter.ExportBankToExcel(ctx, bank)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
