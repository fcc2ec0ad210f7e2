package config

import (
	"context"
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type amqpConn interface {
	IsClosed() bool
}

type bucket interface {
	IsAccessible(ctx context.Context) (bool, error)
}

type HealthChecker struct {
	db       pinger
	amqpConn amqpConn
	mqtt     mqtt.Client
	bucket   bucket
}

var (
	_ pinger   = (*sql.DB)(nil)
	_ amqpConn = (*amqp.Connection)(nil)
)

func NewHealthChecker(db pinger, amqpConn amqpConn, mqttClient mqtt.Client, reports bucket) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient, bucket: reports}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	if err := h.db.PingContext(ctx); err != nil {
		deps["postgres"] = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else {
		deps["postgres"] = gin.H{"status": "up"}
	}

	if h.amqpConn.IsClosed() {
		deps["rabbitmq"] = gin.H{"status": "down", "error": "connection closed"}
		status = http.StatusServiceUnavailable
	} else {
		deps["rabbitmq"] = gin.H{"status": "up"}
	}

	if !h.mqtt.IsConnected() {
		deps["mqtt"] = gin.H{"status": "down", "error": "not connected"}
		status = http.StatusServiceUnavailable
	} else {
		deps["mqtt"] = gin.H{"status": "up"}
	}

	if ok, err := h.bucket.IsAccessible(ctx); err != nil {
		deps["reports"] = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else if !ok {
		deps["reports"] = gin.H{"status": "down", "error": "bucket not accessible"}
		status = http.StatusServiceUnavailable
	} else {
		deps["reports"] = gin.H{"status": "up"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
