package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/config"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/database"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/handler"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/notify"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/observability"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/repository"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := observability.NewLogger(cfg.LogLevel)

	cat := catalog.New(cfg.SlotLabels, cfg.SeatCapacity, int(cfg.GridRowWidth))

	var (
		store    ledger.Store
		accounts repository.Accounts
		tokens   repository.RefreshTokens
	)
	switch cfg.StoreBackend {
	case "memory":
		mem := repository.NewMemoryStore(cat)
		store, accounts, tokens = mem, mem, mem
		log.Warn("running on the in-memory store; all state is lost on exit")
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.WithError(err).Fatal("database connect failed")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.InitSchema(ctx, db); err != nil {
			cancel()
			log.WithError(err).Fatal("schema init failed")
		}
		sqlStore := repository.NewSQLStore(db)
		if err := sqlStore.Seats.Seed(ctx, cat.Slots(), cat.Capacity()); err != nil {
			cancel()
			log.WithError(err).Fatal("seat seed failed")
		}
		cancel()
		store = sqlStore
		accounts = sqlStore.Accounts
		tokens = repository.NewTokenRepo(db)
	}

	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		notifier = notify.NewQueuePublisher(log)
		go notify.StartConsumer(cfg.AMQPURL, log)
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	led := ledger.New(store, cat, cfg.BookingFee, cfg.SeatLockWait, notifier, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting and response cache disabled")
	}

	router.Register(e, cfg, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, accounts, tokens),
		Seats:       handler.NewSeatsHandler(led, cat),
		Reservation: handler.NewReservationHandler(led),
		Approver:    handler.NewApproverHandler(accounts),
	}, rdb)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
