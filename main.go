package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/closing"
	"auction-engine/internal/config"
	"auction-engine/internal/fanout"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/services/bidding/handler"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		utils.Error("auction engine stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	wallets := ledger.NewLedger(store)
	machine := lifecycle.NewMachine(store)

	registry := fanout.NewRegistry(cfg.MailboxSize)
	defer registry.Close()

	var fanoutOpts []fanout.Option
	if cfg.AMQPURL != "" {
		sink, err := fanout.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer sink.Close()
		fanoutOpts = append(fanoutOpts, fanout.WithSink(sink))
	}
	events := fanout.NewFanout(store, registry, fanoutOpts...)

	biddingSvc := bidding.NewBiddingService(store, wallets, machine, events)
	closer := closing.NewCloser(store, wallets, machine, events)
	scheduler := closing.NewScheduler(store, closer,
		closing.WithInterval(cfg.SchedulerInterval),
		closing.WithWorkers(cfg.SchedulerWorkers),
		closing.WithSweepTimeout(cfg.SchedulerSweepTimeout),
	)

	if cfg.SeedDemo {
		seedDemo(ctx, wallets, biddingSvc)
	}

	router := server.SetupRouter(server.Services{
		Bidding:   biddingSvc,
		Auctions:  biddingSvc,
		Canceller: closer,
		Events:    events,
		Wallets:   wallets,
		Streams:   handler.NewStreamHandler(biddingSvc, registry, handler.DefaultKeepAlive),
		Limiter:   server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": cfg.ServerAddr, "store": cfg.StoreDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			<-schedulerDone
			return fmt.Errorf("http server: %w", err)
		}
	}

	utils.Info("Shutting down", nil)
	// open SSE streams end when the registry closes
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Warn("HTTP shutdown incomplete", map[string]any{"error": err.Error()})
	}
	<-schedulerDone
	return nil
}

// openStore returns the configured storage and a function that releases it
func openStore(cfg config.Config) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	db, err := repository.OpenGorm(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewGormRepo(db), closeFn, nil
}

// seedDemo opens a few funded wallets and a pair of auctions to play with
func seedDemo(ctx context.Context, wallets *ledger.Ledger, svc *bidding.BiddingService) {
	for _, user := range []string{"alice", "bob", "carol"} {
		if _, err := wallets.OpenWallet(ctx, user, decimal.NewFromInt(1000)); err != nil {
			utils.Warn("Demo wallet not created", map[string]any{"user_id": user, "error": err.Error()})
		}
	}

	now := time.Now().UTC()
	demo := []bidding.NewAuction{
		{ItemName: "Vintage camera", Description: "Rangefinder, fully working", OwnerID: "dora", StartingPrice: decimal.NewFromInt(100), EndTime: now.Add(10 * time.Minute)},
		{ItemName: "Oak desk", Description: "Solid oak writing desk", OwnerID: "dora", StartingPrice: decimal.NewFromInt(200), EndTime: now.Add(time.Hour)},
		{ItemName: "Signed poster", Description: "Starts shortly", OwnerID: "emil", StartingPrice: decimal.NewFromInt(50), StartTime: now.Add(2 * time.Minute), EndTime: now.Add(30 * time.Minute)},
	}
	for _, req := range demo {
		auction, err := svc.CreateAuction(ctx, req)
		if err != nil {
			utils.Warn("Demo auction not created", map[string]any{"item_name": req.ItemName, "error": err.Error()})
			continue
		}
		utils.Info("Demo auction created", map[string]any{
			"auction_id": auction.AuctionID,
			"status":     auction.Status,
			"end_time":   auction.EndTime,
		})
	}
}
