package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bytix-in/Prana-AI/config"
	"github.com/Bytix-in/Prana-AI/module/dispatch"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgres(ctx, cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	reports, err := config.NewReportsBucket(ctx, cfg)
	if err != nil {
		log.Fatalf("reports bucket: %v", err)
	}
	defer func() { _ = reports.Close() }()

	mapsClient, err := config.NewMapsClient(cfg)
	if err != nil {
		log.Fatalf("maps: %v", err)
	}

	catalog, err := config.LoadCatalog(cfg.AmbulanceCatalog)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	dispatchModule, err := dispatch.Build(ctx, db, amqpConn, mqttClient, reports, mapsClient, dispatch.Options{
		Policy: simulator.Policy{
			TotalSteps:   cfg.SimTotalSteps,
			TickInterval: cfg.SimTickInterval,
			ETAFactor:    cfg.SimETAFactor,
		},
		Catalog:        catalog,
		Offset:         cfg.DispatchOffset,
		RunRetention:   cfg.RunRetention,
		ReaperSchedule: cfg.ReaperSchedule,
	})
	if err != nil {
		log.Fatalf("dispatch module: %v", err)
	}
	defer dispatchModule.Close()

	if err := dispatchModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, reports)
	health.Register(r)

	dispatchModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
