package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varuno8/littlewisewebsite/internal/config"
	"github.com/Varuno8/littlewisewebsite/internal/lib/logger"
	"github.com/Varuno8/littlewisewebsite/internal/repository/postgres"
	"github.com/Varuno8/littlewisewebsite/internal/service"
	httptransport "github.com/Varuno8/littlewisewebsite/internal/transport/http"
	"github.com/Varuno8/littlewisewebsite/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad("config/config.yaml")

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting littlewise backend", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация кэша подключения к БД
	// само подключение откладывается до первого запроса:
	// старт сервиса не зависит от доступности базы
	db := postgres.NewConnCache(cfg.Postgres.DSN(), log)
	defer db.Close()

	// 4. Инициализация репозиториев
	productRepo := postgres.NewProductRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// 5. Инициализация издателя событий заказов
	publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.WriteTimeout, log)

	// 6. Инициализация сервисного слоя
	pricing := service.NewPricingService(productRepo)
	checkoutSvc := service.NewCheckoutService(db, pricing, publisher, userRepo, log)
	userSvc := service.NewUserService(userRepo, log)

	// 7. Инициализация и запуск консьюмера событий identity-провайдера
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.IdentityTopic, cfg.Kafka.GroupID, userSvc, log)
	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)

	// 8. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(checkoutSvc, userSvc, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout)
	log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	// создаем контекст с таймаутом для шатдауна сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if err := consumer.Close(); err != nil {
		log.Error("error closing kafka consumer", slog.String("error", err.Error()))
	}

	if err := publisher.Close(); err != nil {
		log.Error("error closing kafka publisher", slog.String("error", err.Error()))
	}

	log.Info("application stopped")
}
