package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

type fakeChannel struct {
	publishFn func(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	return f.publishFn(ctx, exchange, key, msg)
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishAlert_Success(t *testing.T) {
	var gotExchange string
	var got amqp.Publishing

	ch := &fakeChannel{
		publishFn: func(_ context.Context, exchange, _ string, msg amqp.Publishing) error {
			gotExchange = exchange
			got = msg
			return nil
		},
	}
	p := &AlertPublisher{ch: ch}

	err := p.PublishAlert(context.Background(), &domain.DispatchAlert{
		DispatchID: "D1",
		Event:      domain.AlertSOS,
		Priority:   domain.PriorityCritical,
		Location:   domain.GeoPoint{Lat: 20.2961, Lon: 85.8245},
		Message:    "SOS alert sent!",
		Timestamp:  1715003456,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotExchange != ExchangeName {
		t.Errorf("expected exchange %s, got %s", ExchangeName, gotExchange)
	}
	if got.ContentType != "application/json" {
		t.Errorf("expected application/json, got %s", got.ContentType)
	}
	if got.Type != "sos" {
		t.Errorf("expected type sos, got %s", got.Type)
	}

	var body alertMessage
	if err := json.Unmarshal(got.Body, &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.DispatchID != "D1" || body.Priority != domain.PriorityCritical {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Location.Latitude != 20.2961 || body.Location.Longitude != 85.8245 {
		t.Errorf("unexpected location %+v", body.Location)
	}
	if body.Timestamp != 1715003456 {
		t.Errorf("expected 1715003456, got %d", body.Timestamp)
	}
}

func TestPublishAlert_Error(t *testing.T) {
	ch := &fakeChannel{
		publishFn: func(_ context.Context, _, _ string, _ amqp.Publishing) error {
			return amqp.ErrClosed
		},
	}
	p := &AlertPublisher{ch: ch}

	err := p.PublishAlert(context.Background(), &domain.DispatchAlert{DispatchID: "D1", Event: domain.AlertArrival})
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	p := &AlertPublisher{ch: ch}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !ch.closed {
		t.Error("expected channel to be closed")
	}
}
