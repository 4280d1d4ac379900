package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/handlers"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/questionbank"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("config loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("session_store", cfg.SessionStore),
		zap.String("question_source", cfg.QuestionSource),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	interviewRepo := repositories.NewInterviewRepository(db)

	// Session store
	var store repositories.SessionStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		store = repositories.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL)
	default:
		log.Warn("using in-memory session store; sessions are lost on restart")
		store = repositories.NewMemorySessionStore()
	}

	// Storage
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	// Gemini
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}

	// Question source
	var questions services.QuestionSource
	switch cfg.QuestionSource {
	case config.QuestionSourceQdrant:
		qdrantSource, err := services.NewQdrantQuestionSource(cfg.Qdrant, geminiService, log)
		if err != nil {
			log.Fatal("failed to initialize Qdrant", zap.Error(err))
		}
		defer qdrantSource.Close()
		if err := qdrantSource.InitCollection(ctx, false); err != nil {
			log.Fatal("failed to initialize Qdrant collection", zap.Error(err))
		}
		questions = qdrantSource
	default:
		bank, err := questionbank.Default()
		if err != nil {
			log.Fatal("failed to load question bank", zap.Error(err))
		}
		questions = questionbank.NewStaticSource(bank)
	}

	// Interview flow
	classifier := services.NewDomainClassifier(geminiService, cfg.Gemini.MaxRetries, log)
	resumeEvaluator := services.NewResumeEvaluator(services.NewPDFParserService(), geminiService, cfg.Gemini.MaxRetries, log)
	scorer := services.NewAnswerScorer(geminiService, log)
	controller := services.NewSessionController(resumeEvaluator, classifier, questions, scorer, cfg.Interview, log)

	evaluator := services.NewEvaluatorService(interviewRepo, controller, log)
	worker := services.NewWorker(interviewRepo, evaluator, cfg.Worker.Concurrency, cfg.Worker.PollInterval, cfg.Worker.StaleAfter, log)
	worker.Start(ctx)

	interviews := services.NewInterviewService(store, interviewRepo, controller, classifier, worker, cfg.Interview, log)
	progress := services.NewProgressService(classifier, interviewRepo, cfg.Interview.MaxQuestions, log)
	agent := services.NewAgentService(services.NewIntentClassifier(geminiService, log), interviews, progress, cfg.Interview)

	app := fiber.New(fiber.Config{
		AppName:      "Mock Interview API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(handlers.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.Register(app.Group("/api/v1"), handlers.Handlers{
		Interview: handlers.NewInterviewHandler(interviews, storageService, cfg.Storage.MaxFileSize, log),
		Result:    handlers.NewResultHandler(interviews),
		Progress:  handlers.NewProgressHandler(progress),
		Agent:     handlers.NewAgentHandler(agent),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
