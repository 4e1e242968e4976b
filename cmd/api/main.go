package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbook/internal/api"
	"hotelbook/internal/auth"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/logging"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"
	"hotelbook/internal/repository"
	"hotelbook/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.WithComponent(baseLogger, "api-main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, logging.WithComponent(baseLogger, "database"))
	if err != nil {
		return err
	}
	defer db.Close()

	tokens, redisClient := initTokenStore(ctx, cfg, logging.WithComponent(baseLogger, "tokens"))
	if redisClient != nil {
		defer redisClient.Close()
	}

	bus := events.NewEventBus()
	subscribeEvents(bus, logging.WithComponent(baseLogger, "events"))

	authService := service.NewAuthService(
		db,
		tokens,
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost),
		cfg.API.RateLimit,
		logging.WithComponent(baseLogger, "auth"),
	)
	created, err := authService.EnsureDefaultAdmin(ctx, cfg.Admin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info().Str("username", cfg.Admin.Username).Msg("default admin created")
	}

	roomService := service.NewRoomService(db, bus, logging.WithComponent(baseLogger, "rooms"))
	if err := roomService.Refresh(ctx); err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	bookingService := service.NewBookingService(db, bus, logging.WithComponent(baseLogger, "bookings"),
		service.WithBookingRules(cfg.Booking))

	if cfg.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Backup, logging.WithComponent(baseLogger, "backup"))
		go backups.Start(ctx)
	}

	startMetrics(ctx, cfg, logger)

	httpLogger := logging.WithComponent(baseLogger, "http")
	handler := api.NewHandler(bookingService, roomService, authService, httpLogger)
	router := api.NewRouter(cfg.API, handler, db, httpLogger)
	httpServer := api.NewHTTPServer(cfg.API, router, httpLogger)

	return serve(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger, database.WithBusyTimeout(cfg.Database.BusyTimeout))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	seeded, err := db.SeedRooms(ctx, roomsFromSeed(cfg.Rooms))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed rooms: %w", err)
	}
	if seeded > 0 {
		logger.Info().Int("rooms", seeded).Msg("seeded room types")
	}
	return db, nil
}

func roomsFromSeed(seeds []config.RoomSeed) []*models.RoomType {
	rooms := make([]*models.RoomType, 0, len(seeds))
	for _, s := range seeds {
		rooms = append(rooms, &models.RoomType{
			Name:        s.Name,
			Type:        s.Type,
			PriceCents:  models.CentsFromAmount(s.Price),
			Capacity:    s.Capacity,
			Description: s.Description,
			Amenities:   s.Amenities,
			Images:      s.Images,
			Videos:      s.Videos,
			Available:   true,
			TotalUnits:  s.TotalUnits,
		})
	}
	return rooms
}

// initTokenStore prefers Redis and keeps an in-memory store behind it. Without
// a reachable Redis the memory store is used alone.
func initTokenStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.TokenStore, *redis.Client) {
	memory := repository.NewMemoryTokenStore()
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory token store")
		return memory, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory token store")
		_ = client.Close()
		return memory, nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return repository.NewFailoverTokenStore(repository.NewRedisTokenStore(client), memory, logger), client
}

func subscribeEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.EventBookingPlaced, func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		units := make(map[int64]int, len(p.Items))
		for _, it := range p.Items {
			units[it.RoomID] += it.Quantity
		}
		metrics.IncBookingPlaced(units)
		logger.Info().Int64("booking_id", p.BookingID).Str("check_in", p.CheckIn).Str("check_out", p.CheckOut).Msg("booking placed")
		return nil
	})
	bus.Subscribe(events.EventBookingStatusChanged, func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		metrics.IncStatusChange(p.Status)
		logger.Info().Int64("booking_id", p.BookingID).Str("from", p.PreviousStatus).Str("to", p.Status).Msg("booking status changed")
		return nil
	})

	roomLog := func(e *events.Event) error {
		var p events.RoomEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		logger.Info().Str("event", e.Type).Int64("room_id", p.RoomID).Str("by", p.ChangedBy).Msg("inventory changed")
		return nil
	}
	for _, t := range []string{events.EventRoomCreated, events.EventRoomUpdated, events.EventRoomDeleted} {
		bus.Subscribe(t, roomLog)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
