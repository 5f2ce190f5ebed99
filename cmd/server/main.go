// ShiftWeek 排班服务
// HTTP 入口，每个请求独立生成一周排班
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/shiftweek/internal/config"
	"github.com/paiban/shiftweek/internal/constraints"
	"github.com/paiban/shiftweek/internal/database"
	"github.com/paiban/shiftweek/internal/handler"
	"github.com/paiban/shiftweek/internal/metrics"
	"github.com/paiban/shiftweek/internal/middleware"
	"github.com/paiban/shiftweek/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     cfg.App.LogFormat,
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})

	opts := []handler.Option{
		handler.WithSeed(cfg.Rota.Seed),
		handler.WithTimeout(cfg.API.Timeout),
	}

	// 可选的数据库归档
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(context.Background(), &cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("数据库初始化失败")
		}
		defer db.Close()
		opts = append(opts, handler.WithArchive(db))
	}

	scheduleHandler := handler.NewScheduleHandler(opts...)
	mux := newMux(cfg, scheduleHandler, db)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      withMiddleware(cfg, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Bool("archive", cfg.Database.Enabled).
			Msg("服务器启动")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// newMux 注册路由
func newMux(cfg *config.Config, scheduleHandler *handler.ScheduleHandler, db *database.DB) *http.ServeMux {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{"status": "ok", "service": cfg.App.Name}
		code := http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status["database"] = "ok"
			}
		}
		writeJSON(w, code, status)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "ShiftWeek 排班 API v1",
			"endpoints": map[string]string{
				"generate": "POST /api/v1/schedule/generate",
				"validate": "POST /api/v1/schedule/validate",
				"rules":    "GET /api/v1/rules",
			},
		})
	})

	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)

	// 规则库：固定的班次与人数规则
	mux.HandleFunc("/api/v1/rules", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, constraints.Response())
	})

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	return mux
}

// withMiddleware 中间件执行顺序：requestID -> logging -> recover -> bodyLimit -> handler
// logging 在 recover 之外，崩溃的请求也会记录日志和指标
func withMiddleware(cfg *config.Config, h http.Handler) http.Handler {
	return middleware.Chain(h,
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		middleware.BodyLimit(cfg.API.MaxBodySize),
	)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
