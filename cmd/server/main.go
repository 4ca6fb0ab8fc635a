package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskpilot/backend/api/handler"
	"github.com/taskpilot/backend/internal/config"
	"github.com/taskpilot/backend/internal/infrastructure/monitor"
	sqliteInfra "github.com/taskpilot/backend/internal/infrastructure/sqlite"
	"github.com/taskpilot/backend/internal/middleware"
	"github.com/taskpilot/backend/internal/router"
	"github.com/taskpilot/backend/internal/services/lifecycle"
	"github.com/taskpilot/backend/pkg/httpcontext"
	"github.com/taskpilot/backend/pkg/llm"
	"github.com/taskpilot/backend/pkg/logger"
	sqliteRepo "github.com/taskpilot/backend/repository/sqlite"
	agentUC "github.com/taskpilot/backend/usecase/agent"
	taskUC "github.com/taskpilot/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	db, err := sqliteInfra.Open(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("sqlite connection failed", zap.Error(err))
	}
	manager.Register("sqlite", func(ctx context.Context) error {
		return sqliteInfra.Close(db, zapLogger)
	})

	provider, err := llm.NewAnthropicProvider(llm.AnthropicConfig{
		APIKey:    cfg.Agent.APIKey,
		BaseURL:   cfg.Agent.BaseURL,
		Model:     cfg.Agent.Model,
		MaxTokens: cfg.Agent.MaxTokens,
	})
	if err != nil {
		zapLogger.Fatal("anthropic client failed", zap.Error(err))
	}

	mon := monitor.New(db, cfg.Agent.APIKey != "", 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := sqliteRepo.NewTaskRepository(db)

	agentUseCase := agentUC.New(provider, taskRepo, agentUC.Config{
		MaxInputLength: cfg.Agent.MaxInputLength,
		MaxTokens:      cfg.Agent.MaxTokens,
		MaxToolRounds:  cfg.Agent.MaxToolRounds,
	}, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Command: apiHandler.NewCommandHandler(agentUseCase, taskUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers,
		middleware.Recover(zapLogger),
		middleware.AccessLog(zapLogger),
	)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
