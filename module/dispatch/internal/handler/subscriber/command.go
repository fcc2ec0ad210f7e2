package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

const topicPattern = "/dispatch/+/command"

const (
	actionSOS    = "sos"
	actionCancel = "cancel"
)

type dispatchService interface {
	RaiseSOS(ctx context.Context, id string) (*domain.Dispatch, error)
	CancelDispatch(ctx context.Context, id string) (*domain.Dispatch, error)
}

type commandMessage struct {
	DispatchID string `json:"dispatch_id"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// CommandSubscriber applies SOS and cancel commands sent by the caller's
// device over MQTT.
type CommandSubscriber struct {
	client mqtt.Client
	svc    dispatchService
}

func NewCommandSubscriber(client mqtt.Client, svc dispatchService) *CommandSubscriber {
	return &CommandSubscriber{client: client, svc: svc}
}

func (s *CommandSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *CommandSubscriber) Stop() error {
	token := s.client.Unsubscribe(topicPattern)
	token.Wait()
	return token.Error()
}

func (s *CommandSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw commandMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid command message: %v", err)
		return
	}

	if err := resolveDispatchID(&raw, msg.Topic()); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	if err := validateCommandMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	ctx := context.Background()

	switch raw.Action {
	case actionSOS:
		if _, err := s.svc.RaiseSOS(ctx, raw.DispatchID); err != nil {
			log.Printf("[%s] sos command error: %v", raw.DispatchID, err)
			return
		}
	case actionCancel:
		if _, err := s.svc.CancelDispatch(ctx, raw.DispatchID); err != nil {
			log.Printf("[%s] cancel command error: %v", raw.DispatchID, err)
			return
		}
	}
	log.Printf("[%s] %s command applied", raw.DispatchID, raw.Action)
}

// dispatchIDFromTopic extracts the wildcard segment of /dispatch/{id}/command.
func dispatchIDFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 3 || parts[0] != "dispatch" || parts[2] != "command" {
		return ""
	}
	return parts[1]
}

// resolveDispatchID takes the dispatch id from the topic. A payload id, when
// present, must name the same dispatch.
func resolveDispatchID(msg *commandMessage, topic string) error {
	id := dispatchIDFromTopic(topic)
	if id == "" {
		return fmt.Errorf("topic %q: no dispatch id", topic)
	}
	if msg.DispatchID != "" && msg.DispatchID != id {
		return fmt.Errorf("dispatch_id %q does not match topic %q", msg.DispatchID, topic)
	}
	msg.DispatchID = id
	return nil
}

func validateCommandMessage(msg *commandMessage) error {
	if msg.DispatchID == "" {
		return fmt.Errorf("dispatch_id: required")
	}
	if msg.Action != actionSOS && msg.Action != actionCancel {
		return fmt.Errorf("action: must be %q or %q", actionSOS, actionCancel)
	}
	if msg.Timestamp < 0 {
		return fmt.Errorf("timestamp: must not be negative")
	}
	return nil
}
