package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type commandMessage struct {
	DispatchID string `json:"dispatch_id"`
	Action     string `json:"action"`
	Timestamp  int64  `json:"timestamp"`
}

// Mock caller device: sends SOS commands for a dispatch on an interval and,
// optionally, cancels it after a number of SOS rounds.
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <dispatch_id> <interval_seconds> [cancel_after]\n", os.Args[0])
		os.Exit(1)
	}

	dispatchID := os.Args[1]

	intervalSec, err := strconv.Atoi(os.Args[2])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	cancelAfter := 0
	if len(os.Args) > 3 {
		cancelAfter, err = strconv.Atoi(os.Args[3])
		if err != nil || cancelAfter < 0 {
			fmt.Fprintf(os.Stderr, "error: cancel_after must be a non-negative integer\n")
			os.Exit(1)
		}
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("prana-mock-device-%04d", rand.Intn(10000)))

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	topic := fmt.Sprintf("/dispatch/%s/command", dispatchID)
	log.Printf("connected to %s, sending to %s every %ds...", broker, topic, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	sent := 0
	for range ticker.C {
		action := "sos"
		if cancelAfter > 0 && sent >= cancelAfter {
			action = "cancel"
		}

		msg := commandMessage{
			DispatchID: dispatchID,
			Action:     action,
			Timestamp:  time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("publish error: %v", err)
			continue
		}

		log.Printf("published to %s: %s", topic, payload)
		sent++
		if action == "cancel" {
			return
		}
	}
}
