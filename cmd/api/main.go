package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/handler"
	"github.com/zhouzirui/vetchat/internal/model/knowledge"
	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/service/ai"
	"github.com/zhouzirui/vetchat/internal/service/answer"
	"github.com/zhouzirui/vetchat/internal/service/feedback"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/internal/service/playback"
	"github.com/zhouzirui/vetchat/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}
	if envErr != nil {
		log.Warn().Err(envErr).Msg("continuing with system environment variables only")
	}

	catalog, err := locale.DefaultCatalog(cfg.Chat.FallbackLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fallback language")
	}

	entries := knowledge.Seed()
	if cfg.Knowledge.Path != "" {
		entries, err = knowledge.LoadFile(cfg.Knowledge.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load knowledge base")
		}
	}
	log.Info().Int("entries", len(entries)).Str("path", cfg.Knowledge.Path).Msg("knowledge base ready")

	// Ark 未配置时直接渲染检索结果
	var generator answer.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			generator = aiService
			log.Info().Str("model", cfg.AI.Model).Msg("AI service initialized successfully")
		}
	} else {
		log.Info().Msg("Ark 凭证未配置，跳过 AI 功能初始化")
	}
	answers := answer.NewService(knowledge.NewMemoryStore(entries), cfg.Knowledge.TopK, cfg.Chat.MaxQueryLength, generator)

	feedbackStore, err := openFeedbackStore(cfg.Feedback)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open feedback store")
	}
	defer feedbackStore.Close()

	mode, err := playback.ParseMode(cfg.Chat.PlaybackMode, cfg.Chat.TypingInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid playback mode")
	}

	router := handler.NewRouter(cfg, handler.Services{
		Answers:  answers,
		Feedback: feedback.NewService(feedbackStore, cfg.Chat.MaxFeedbackLength),
		Catalog:  catalog,
		Engine: orchestrator.Config{
			MaxQueryLength:   cfg.Chat.MaxQueryLength,
			GreetingsEnabled: cfg.Chat.GreetingsEnabled,
			Mode:             mode,
		},
	})

	if err := runServer(ctx, cfg.Server, router); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func openFeedbackStore(cfg config.FeedbackConfig) (feedback.Store, error) {
	if cfg.DSN != "" {
		log.Info().Msg("storing feedback in sqlite")
		return feedback.NewSQLiteStore(cfg.DSN)
	}
	log.Info().Str("path", cfg.Path).Msg("storing feedback in file")
	return feedback.NewFileStore(cfg.Path), nil
}

func runServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", serverCfg.Addr).Msg("vetchat backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
