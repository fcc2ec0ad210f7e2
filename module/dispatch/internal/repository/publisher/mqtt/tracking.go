package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/publisher"
)

var _ publisher.TrackingPublisher = (*TrackingPublisher)(nil)

const topicFormat = "/dispatch/ambulance/%s/location"

func Topic(dispatchID string) string {
	return fmt.Sprintf(topicFormat, dispatchID)
}

type TrackingPublisher struct {
	client pahomqtt.Client
	qos    byte
}

func NewTrackingPublisher(client pahomqtt.Client) *TrackingPublisher {
	return &TrackingPublisher{client: client, qos: 1}
}

type trackingMessage struct {
	DispatchID          string  `json:"dispatch_id"`
	Step                int     `json:"step"`
	TotalSteps          int     `json:"total_steps"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	RemainingDistanceKm float64 `json:"remaining_distance_km"`
	ETAMinutes          int     `json:"eta_minutes"`
	ETA                 string  `json:"eta"`
	Arrived             bool    `json:"arrived"`
	Timestamp           int64   `json:"timestamp"`
}

func (p *TrackingPublisher) PublishUpdate(ctx context.Context, u *domain.TrackingUpdate) error {
	msg := trackingMessage{
		DispatchID:          u.DispatchID,
		Step:                u.TickResult.Step,
		TotalSteps:          u.TickResult.TotalSteps,
		Latitude:            u.TickResult.Position.Lat,
		Longitude:           u.TickResult.Position.Lon,
		RemainingDistanceKm: u.TickResult.RemainingDistanceKm,
		ETAMinutes:          u.TickResult.ETAMinutes,
		ETA:                 u.TickResult.ETA,
		Arrived:             u.TickResult.Arrived,
		Timestamp:           u.Timestamp.Unix(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal tracking update: %w", err)
	}

	token := p.client.Publish(Topic(u.DispatchID), p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	}
}
