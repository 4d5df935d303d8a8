package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/sajjad939/safechild-lite/internal/config"
	"github.com/sajjad939/safechild-lite/internal/domain"
	"github.com/sajjad939/safechild-lite/internal/handler"
	infradb "github.com/sajjad939/safechild-lite/internal/infrastructure/database"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/llm"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/memory"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/pdf"
	"github.com/sajjad939/safechild-lite/internal/infrastructure/sms"
	"github.com/sajjad939/safechild-lite/internal/router"
	"github.com/sajjad939/safechild-lite/internal/safety"
	"github.com/sajjad939/safechild-lite/internal/usecase"
	dbpkg "github.com/sajjad939/safechild-lite/pkg/database"
	"github.com/sajjad939/safechild-lite/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "safechild-server",
	Short: "SafeChild API server for child-safety chat escalation",
	Long: `SafeChild API server is an HTTP API server built with the Hertz framework.
It classifies child chat messages for safety risk, tracks per-session escalation,
and directs an external language model with age-appropriate response constraints.`,
	Version: version,
	Run:     runServer,
}

func init() {
	// Define flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// Log after logger is initialized
	slog.Info("config loaded successfully", "config_file", cfgFile)
	slog.Info("SafeChild API server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Setup Hertz to use slog
	hertzLogger := logger.NewHertzSlogAdapter(slog.Default())
	hlog.SetLogger(hertzLogger)
	hlog.SetLevel(hlog.LevelInfo)

	// Initialize the safety engine
	classifier, err := safety.NewClassifier(cfg.Safety.Rules, slog.Default())
	if err != nil {
		slog.Error("failed to build safety classifier", "error", err)
		os.Exit(1)
	}
	engine := safety.NewEngine(classifier, safety.NewTracker(), slog.Default())

	slog.Info("safety engine initialized", "custom_rules", len(cfg.Safety.Rules))

	// Initialize database
	db, err := dbpkg.Open(cfg.Database, slog.Default())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	slog.Info("database opened successfully", "path", cfg.Database.Path)

	// Initialize the LLM client
	var llmClient domain.LLMClient
	if cfg.LLM.Mock {
		llmClient = llm.NewMockClient()
		slog.Warn("llm mock mode enabled, replies are canned")
	} else {
		llmClient = llm.NewOpenAIClient(cfg.LLM, slog.Default())
	}

	// Initialize the alert notifier
	var notifier domain.AlertNotifier
	if cfg.SMS.Enabled {
		notifier = sms.NewTwilioNotifier(cfg.SMS, slog.Default())
	} else {
		notifier = sms.NewNoopNotifier(slog.Default())
	}

	// Initialize chat components
	sessionRepo := memory.NewSessionRepository()
	chatUsecase := usecase.NewChatUsecase(
		engine,
		sessionRepo,
		llmClient,
		cfg.HistoryWindow(),
		slog.Default(),
	)
	chatHandler := handler.NewChatHandler(chatUsecase, slog.Default())
	sessionHandler := handler.NewSessionHandler(chatUsecase, slog.Default())

	// Initialize emergency components
	alertRepo := infradb.NewAlertRepository(db)
	emergencyUsecase := usecase.NewEmergencyUsecase(alertRepo, notifier, engine, slog.Default())
	emergencyHandler := handler.NewEmergencyHandler(emergencyUsecase, slog.Default())

	// Initialize complaint components
	renderer, err := pdf.NewRenderer(cfg.Safety.PDFDir)
	if err != nil {
		slog.Error("failed to initialize pdf renderer", "error", err)
		os.Exit(1)
	}
	complaintRepo := infradb.NewComplaintRepository(db)
	complaintUsecase := usecase.NewComplaintUsecase(complaintRepo, renderer, llmClient, slog.Default())
	complaintHandler := handler.NewComplaintHandler(complaintUsecase, slog.Default())

	healthHandler := handler.NewHealthHandler(db)

	slog.Info("handlers initialized")

	// Create Hertz server with performance optimization
	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	// Setup routes
	router.Setup(h, chatHandler, sessionHandler, emergencyHandler, complaintHandler, healthHandler)

	// Start server
	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	// Graceful shutdown
	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	// Close database connection
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	} else {
		slog.Info("database closed successfully")
	}

	slog.Info("server stopped gracefully")
}
