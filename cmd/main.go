package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zooplan/training-platform/internal/api/router"
	"github.com/zooplan/training-platform/internal/config"
	"github.com/zooplan/training-platform/internal/db"
	"github.com/zooplan/training-platform/internal/event"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
	"github.com/zooplan/training-platform/internal/service"
)

func main() {
	// 1. Загружаем конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		logger.Fatal("init db", zap.Error(err))
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal("auto migrate", zap.Error(err))
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("sql DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	trainerRepo := repository.NewGormTrainerRepository(gormDB)
	tutorRepo := repository.NewGormTutorRepository(gormDB)
	petRepo := repository.NewGormPetRepository(gormDB)
	packageRepo := repository.NewGormPackageRepository(gormDB)
	purchaseRepo := repository.NewGormPurchaseRepository(gormDB)
	availabilityRepo := repository.NewGormAvailabilityRepository(gormDB)
	templateRepo := repository.NewGormTemplateRepository(gormDB)
	sessionRepo := repository.NewGormSessionRepository(gormDB)
	enrollmentRepo := repository.NewGormEnrollmentRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	dispatcher := event.NewLogDispatcher(logger)

	// 5. Сервисный слой.
	generatorSvc := service.NewGeneratorService(gormDB, templateRepo, trainerRepo, availabilityRepo, sessionRepo, eventRepo, dispatcher, logger)
	enrollmentSvc := service.NewEnrollmentService(gormDB, sessionRepo, enrollmentRepo, purchaseRepo, tutorRepo, petRepo, eventRepo, dispatcher, logger)
	availabilitySvc := service.NewAvailabilityService(gormDB, trainerRepo, packageRepo, availabilityRepo, templateRepo, logger)
	sessionSvc := service.NewSessionService(gormDB, trainerRepo, packageRepo, sessionRepo, eventRepo, dispatcher, logger)
	purchaseSvc := service.NewPurchaseService(gormDB, tutorRepo, packageRepo, purchaseRepo, logger)

	// 6. HTTP-приложение.
	app := router.New(router.Deps{
		Generator:    generatorSvc,
		Enrollments:  enrollmentSvc,
		Availability: availabilitySvc,
		Sessions:     sessionSvc,
		Purchases:    purchaseSvc,
		Log:          logger,
	})

	// 7. Периодический sweep просроченных сессий.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	if cfg.SweepIntervalMin > 0 {
		go runSweep(sweepCtx, sessionSvc, time.Duration(cfg.SweepIntervalMin)*time.Minute, logger)
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down http server...")
	cancelSweep()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// runSweep раз в interval переводит просроченные сессии в expired.
func runSweep(ctx context.Context, sessions *service.SessionService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.ExpireStale(ctx, time.Now()); err != nil {
				logger.Error("sweep stale sessions", zap.Error(err))
			}
		}
	}
}
