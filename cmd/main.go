package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"

	"github.com/s/courseMarket/internal/auth"
	"github.com/s/courseMarket/internal/config"
	"github.com/s/courseMarket/internal/database"
	"github.com/s/courseMarket/internal/enrollment"
	"github.com/s/courseMarket/internal/handlers"
	"github.com/s/courseMarket/internal/marketplace"
	"github.com/s/courseMarket/internal/middleware"
	"github.com/s/courseMarket/internal/models"
	"github.com/s/courseMarket/internal/server"
	"github.com/s/courseMarket/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Загрузка переменных окружения
	// ---------------------------
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	if envErr != nil {
		logger.Info("Файл .env не загружен, используются системные переменные")
	}
	logger.Info("Запуск courseMarket",
		slog.String("version", config.Version),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("cache_driver", cfg.CacheDriver),
	)

	// ---------------------------
	// 1. Хранилище локального кэша записей
	// ---------------------------
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к БД", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("Ошибка миграции", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ---------------------------
	// 2. Бэкенд маркетплейса и согласование записей
	// ---------------------------
	market := marketplace.New(cfg.APIBaseURL, cfg.APITimeout, cfg.APIReadRetries, logger)
	cache := enrollment.NewLocalCache(storage.NewGormKV(db), logger)
	views := enrollment.NewViews(cfg.ViewCacheSize, cfg.ViewCacheTTL)
	reconciler := enrollment.NewReconciler(market, cache, views, models.NewValidator(), logger)

	// ---------------------------
	// 3. Вход через Google (необязателен)
	// ---------------------------
	var authenticator handlers.Authenticator
	if cfg.GoogleEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		google, err := auth.NewGoogle(ctx, cfg.OIDCIssuer, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		cancel()
		if err != nil {
			logger.Error("Ошибка настройки входа через Google", slog.String("error", err.Error()))
			os.Exit(1)
		}
		authenticator = google
	} else {
		logger.Warn("GOOGLE_* не заданы, вход через Google отключён")
	}

	// ---------------------------
	// 4. Настройка сессий
	// ---------------------------
	if cfg.UsesDevSessionKey() {
		logger.Warn("SESSION_KEY не задан, используется дефолтный. Только для разработки!")
	}
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
	}

	// ---------------------------
	// 5. Хендлеры, роутинг и запуск
	// ---------------------------
	h := handlers.NewHandler(market, reconciler, store, authenticator, logger)

	srv := server.New(cfg, logger, server.NewRouter(h),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSOrigin),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Сервер завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
