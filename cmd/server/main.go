package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/examcell/hall-allocation/internal/config"
	"github.com/examcell/hall-allocation/internal/database"
	"github.com/examcell/hall-allocation/internal/duty"
	"github.com/examcell/hall-allocation/internal/handler"
	"github.com/examcell/hall-allocation/internal/middleware"
	"github.com/examcell/hall-allocation/internal/queue"
	"github.com/examcell/hall-allocation/internal/repository"
	"github.com/examcell/hall-allocation/internal/router"
	"github.com/examcell/hall-allocation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional; without it caching and rate limiting degrade
	// to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	roomRepo := repository.NewRoomRepo(db)
	studentRepo := repository.NewStudentRepo(db)
	invRepo := repository.NewInvigilatorRepo(db)
	allocRepo := repository.NewAllocationRepo(db)
	labRepo := repository.NewLabAllocationRepo(db)
	dutyRepo := repository.NewStaffDutyRepo(db)

	syncer := duty.NewSynchronizer(dutyRepo, invRepo)
	publisher := service.NewAMQPPublisher()

	allocSvc := service.NewAllocationService(allocRepo, studentRepo, roomRepo, invRepo, syncer, publisher)
	labSvc := service.NewLabAllocationService(labRepo, invRepo, syncer, publisher)
	dutySvc := service.NewDutyReportService(dutyRepo, invRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	auth := handler.NewAuthHandler(cfg, studentRepo, allocSvc)
	router.RegisterRoutes(e, auth)
	router.RegisterAllocations(e, handler.NewAllocationHandler(allocSvc), handler.NewLabHandler(labSvc), cfg.JWTSecret, cache)
	router.RegisterCatalog(e, handler.NewRoomHandler(roomRepo), handler.NewStudentHandler(studentRepo, cfg.BcryptCost),
		handler.NewInvigilatorHandler(invRepo), cfg.JWTSecret, cache)
	router.RegisterDuties(e, handler.NewStaffDutyHandler(dutySvc), cfg.JWTSecret, cache)

	// Background duty-event consumer; reconnects on its own.
	go func() {
		if err := queue.StartDutyConsumer(); err != nil {
			log.Printf("duty-consumer stopped: %v", err)
		}
	}()

	// Expiry reaper: allocations outlive their exam date by a fixed
	// grace period and are then deleted.
	go runReaper(allocRepo, labRepo, time.Duration(cfg.ReaperInterval)*time.Minute)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

type reapable interface {
	ReapExpired(ctx context.Context) (int64, error)
}

func runReaper(hall, lab reapable, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if n, err := hall.ReapExpired(ctx); err != nil {
			log.Printf("reaper: hall allocations: %v", err)
		} else if n > 0 {
			log.Printf("reaper: removed %d expired hall allocations", n)
		}
		if n, err := lab.ReapExpired(ctx); err != nil {
			log.Printf("reaper: lab allocations: %v", err)
		} else if n > 0 {
			log.Printf("reaper: removed %d expired lab allocations", n)
		}
		cancel()
	}
}
