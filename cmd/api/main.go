package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/room-booking/internal/api/http"
	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/lock"
	"github.com/spec-kit/room-booking/internal/observability"
	"github.com/spec-kit/room-booking/internal/persistence"
	"github.com/spec-kit/room-booking/internal/repository"
	"github.com/spec-kit/room-booking/internal/repository/memory"
	"github.com/spec-kit/room-booking/internal/service"
	"github.com/spec-kit/room-booking/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    repository.UserRepository
	rooms    repository.RoomRepository
	bookings repository.BookingRepository
	history  repository.BookingHistoryRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg)

	var locker lock.Locker = lock.NewLocalLocker(cfg.Lock.Wait())
	if redis.Enabled() {
		locker = lock.NewRedisLocker(redis.Client, cfg.Lock.TTL(), cfg.Lock.Wait())
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notify)

	var sink *events.KafkaSink
	if len(cfg.Kafka.Brokers) > 0 {
		sink = events.NewKafkaSink(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.BookingTopic))
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("close kafka sink", zap.Error(err))
			}
		}()
		logger.Info("forwarding booking events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.BookingTopic))
	}
	historyService := service.NewHistoryService(dispatcher, repos.history, logger.Named("history"))
	worker.StartNotificationWorker(dispatcher, worker.Subscribers{
		Notifications: notificationService,
		History:       historyService,
		Kafka:         sink,
	})

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repos.users,
		Logger:   logger,
	})
	resolver := auth.NewResolver(authService.TokenManager(), repos.users)
	authMiddleware := auth.NewAuthMiddleware(resolver)

	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo: repos.bookings,
		RoomRepo:    repos.rooms,
		UserRepo:    repos.users,
		Locker:      locker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	roomService := service.NewRoomService(repos.rooms, logger)
	userService := service.NewUserService(cfg.Auth, repos.users, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Bookings:       handlers.NewBookingsHandler(bookingService, historyService),
		Rooms:          handlers.NewRoomsHandler(roomService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{users: store.Users(), rooms: store.Rooms(), bookings: store.Bookings(), history: store.History()}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:    repository.NewUserRepository(pool),
		rooms:    repository.NewRoomRepository(pool),
		bookings: repository.NewBookingRepository(pool),
		history:  repository.NewBookingHistoryRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
