package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Leganyst/taskboard-platform/internal/config"
	"github.com/Leganyst/taskboard-platform/internal/db"
	"github.com/Leganyst/taskboard-platform/internal/geo"
	"github.com/Leganyst/taskboard-platform/internal/handler"
	"github.com/Leganyst/taskboard-platform/internal/model"
	"github.com/Leganyst/taskboard-platform/internal/repository"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

func main() {
	// 1. Логгер.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	// 2. .env, если есть, затем конфиги из окружения.
	_ = godotenv.Load()

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load db config")
	}
	appCfg := config.LoadAppConfig()

	// 3. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("init db")
	}

	// 4. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 5. Репозитории (реализации на GORM).
	postRepo := repository.NewGormPostRepository(gormDB)
	claimRepo := repository.NewGormClaimRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	// 6. Геокодер и сервисы.
	geocoder := geo.NewGeocoder(
		appCfg.GeocoderBaseURL,
		time.Duration(appCfg.GeocodeTimeoutSec)*time.Second,
		logger,
	)
	locations := geo.NewAddressResolver(geocoder, time.Duration(appCfg.GeocodeDebounceMS)*time.Millisecond)
	defer locations.Stop()

	postSvc := service.NewPostService(postRepo, eventRepo, locations, logger)
	claimSvc := service.NewClaimService(claimRepo, postRepo, userRepo, eventRepo, logger)
	userSvc := service.NewUserService(userRepo)

	// 7. HTTP-сервер на gin.
	router := handler.NewRouter(&handler.Handler{
		Posts:    postSvc,
		Claims:   claimSvc,
		Users:    userSvc,
		Geocoder: geocoder,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:    appCfg.HTTPAddr,
		Handler: router,
	}

	logger.Info().Str("addr", appCfg.HTTPAddr).Msg("taskboard core listening")

	// 8. Запускаем сервер в горутине.
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http serve")
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down http server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
