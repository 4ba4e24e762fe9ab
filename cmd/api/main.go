package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront-orders.git/internal/cart"
	"github.com/ariefcatur/go-storefront-orders.git/internal/checkout"
	"github.com/ariefcatur/go-storefront-orders.git/internal/config"
	"github.com/ariefcatur/go-storefront-orders.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-orders.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders.git/internal/metrics"
	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
	"github.com/ariefcatur/go-storefront-orders.git/internal/payments"
	"github.com/ariefcatur/go-storefront-orders.git/internal/postgres"
	"github.com/ariefcatur/go-storefront-orders.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + migrasi
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis: cart store + metrics counters
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer utk order lifecycle events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log.With(zap.String("component", "producer")))
	prod.Start(ctx)

	store := &orders.Store{DB: db}
	gateway := payments.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	counters := &metrics.Counters{Redis: rdb}
	carts := &cart.Store{Redis: rdb}

	guard := &checkout.Guard{
		Store:      store,
		Gateway:    gateway,
		Metrics:    counters,
		Log:        log.With(zap.String("component", "guard")),
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	}
	materializer := &checkout.Materializer{
		Store:   store,
		Gateway: gateway,
		Carts:   carts,
		Metrics: counters,
		Events:  prod,
		Log:     log.With(zap.String("component", "materializer")),
		Service: cfg.ServiceName,
	}
	lifecycle := &checkout.Lifecycle{
		Store:   store,
		Gateway: gateway,
		Metrics: counters,
		Events:  prod,
		Log:     log.With(zap.String("component", "lifecycle")),
		Service: cfg.ServiceName,
	}

	router := httpx.NewRouter()
	(&httpx.CheckoutHandler{Guard: guard, Log: log}).Register(router)
	(&httpx.WebhookHandler{Materializer: materializer, Secret: cfg.WebhookSecret, Log: log}).Register(router)
	(&httpx.AdminOrdersHandler{Lifecycle: lifecycle, Store: store, Token: cfg.AdminToken, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
