package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/database"
	"github.com/testmate/testmate-backend/internal/handler"
	"github.com/testmate/testmate-backend/internal/logger"
	"github.com/testmate/testmate-backend/internal/mail"
	"github.com/testmate/testmate-backend/internal/repository"
	"github.com/testmate/testmate-backend/internal/router"
	"github.com/testmate/testmate-backend/internal/service"
	"github.com/testmate/testmate-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TestMate Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewOneTimeTokenRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Mailer ─────────────────────────────────────────────
	var mailer mail.Service
	if cfg.SendGridKey != "" {
		mailer = mail.NewSendGridService(cfg.SendGridKey, cfg.AppName, cfg.MailFrom, log)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, mail goes to the log")
		mailer = mail.NewConsoleService(log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	paperCache := service.NewRedisPaperCache(rdb, cfg.PaperCacheTTL, log)
	authService := service.NewAuthService(cfg, userRepo, userRepo)
	tokenService := service.NewTokenService(cfg, tokenRepo)
	accountService := service.NewAccountService(cfg, userRepo, authService, tokenService, mailer, log)
	subjectService := service.NewSubjectService(subjectRepo, userRepo, log)
	questionService := service.NewQuestionService(questionRepo, subjectRepo, log)
	quizService := service.NewQuizService(quizRepo, resultRepo, subjectRepo, userRepo, paperCache, log)
	attemptService := service.NewAttemptService(quizRepo, questionRepo, resultRepo, paperCache, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(accountService),
		Subject:  handler.NewSubjectHandler(subjectService),
		Question: handler.NewQuestionHandler(questionService),
		Quiz:     handler.NewQuizHandler(quizService),
		Attempt:  handler.NewAttemptHandler(attemptService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{
		Auth:     authService,
		Accounts: accountService,
		Users:    userRepo,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
