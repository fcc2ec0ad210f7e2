package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"gocloud.dev/blob"
	"googlemaps.github.io/maps"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	handler "github.com/Bytix-in/Prana-AI/module/dispatch/internal/handler/http"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/handler/subscriber"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/database/postgres"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/geocoder"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/geocoder/googlemaps"
	mqttpub "github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/publisher/mqtt"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/publisher/rabbitmq"
	blobstore "github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/storage/blob"
	"github.com/Bytix-in/Prana-AI/module/dispatch/service"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

type Options struct {
	Policy         simulator.Policy
	Catalog        []domain.AmbulanceType
	Offset         float64
	RunRetention   time.Duration
	ReaperSchedule string
}

type Module struct {
	DispatchSvc *service.DispatchService
	Tracker     *service.Tracker
	handler     *handler.DispatchHandler
	subscriber  *subscriber.CommandSubscriber
	reaper      *service.Reaper
	alertPub    *rabbitmq.AlertPublisher
}

// Build wires the dispatch module. mapsClient may be nil, in which case
// pickup addresses are not resolved.
func Build(ctx context.Context, db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, reports *blob.Bucket, mapsClient *maps.Client, opts Options) (*Module, error) {
	sim, err := simulator.New(opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}

	dispatchRepo := postgres.NewDispatchRepo(db)
	if err := dispatchRepo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	var resolver geocoder.AddressResolver
	if mapsClient != nil {
		resolver = googlemaps.NewAddressResolver(mapsClient)
	} else {
		log.Println("no maps client configured, pickup addresses will not be resolved")
	}

	tracker := service.NewTracker(sim, mqttpub.NewTrackingPublisher(mqttClient))
	dispatchSvc := service.NewDispatchService(dispatchRepo, alertPub, tracker, service.DispatchOptions{
		Catalog:     opts.Catalog,
		Offset:      opts.Offset,
		Attachments: blobstore.NewAttachmentStore(reports),
		Geocoder:    resolver,
	})
	tracker.OnArrival(dispatchSvc.HandleArrival)

	reaper, err := service.NewReaper(tracker, opts.ReaperSchedule, opts.RunRetention)
	if err != nil {
		tracker.Close()
		_ = alertPub.Close()
		return nil, err
	}

	return &Module{
		DispatchSvc: dispatchSvc,
		Tracker:     tracker,
		handler:     handler.NewDispatchHandler(dispatchSvc, tracker),
		subscriber:  subscriber.NewCommandSubscriber(mqttClient, dispatchSvc),
		reaper:      reaper,
		alertPub:    alertPub,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	if err := m.subscriber.Start(); err != nil {
		return err
	}
	m.reaper.Start()
	return nil
}

// Close stops background work. Runs still in flight are abandoned.
func (m *Module) Close() {
	m.reaper.Stop()
	if err := m.subscriber.Stop(); err != nil {
		log.Printf("unsubscribe commands error: %v", err)
	}
	m.Tracker.Close()
	if err := m.alertPub.Close(); err != nil {
		log.Printf("close alert publisher error: %v", err)
	}
}
