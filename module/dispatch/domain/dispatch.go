package domain

import "time"

type AmbulanceType struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       string `json:"price" yaml:"price"`
	ETARange    string `json:"eta_range" yaml:"eta_range"`
}

type Priority string

const (
	PriorityNonEmergency Priority = "non-emergency"
	PriorityUrgent       Priority = "urgent"
	PriorityCritical     Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNonEmergency, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

type DispatchStatus string

const (
	StatusEnRoute   DispatchStatus = "en_route"
	StatusArrived   DispatchStatus = "arrived"
	StatusCancelled DispatchStatus = "cancelled"
)

// Closed reports whether the dispatch no longer accepts commands.
func (s DispatchStatus) Closed() bool {
	return s == StatusArrived || s == StatusCancelled
}

type Patient struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

type DispatchRequest struct {
	AmbulanceType string
	Patient       Patient
	Priority      Priority
	Pickup        GeoPoint
	// Origin is where the ambulance starts; nil means near the pickup.
	Origin *GeoPoint
}

type Dispatch struct {
	ID              string         `json:"id"`
	AmbulanceType   string         `json:"ambulance_type"`
	Patient         Patient        `json:"patient"`
	Priority        Priority       `json:"priority"`
	Status          DispatchStatus `json:"status"`
	Pickup          GeoPoint       `json:"pickup"`
	Origin          GeoPoint       `json:"origin"`
	PickupAddress   string         `json:"pickup_address,omitempty"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type Attachment struct {
	ID          string    `json:"id"`
	DispatchID  string    `json:"dispatch_id"`
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

type AlertEventType string

const (
	AlertArrival   AlertEventType = "arrival"
	AlertSOS       AlertEventType = "sos"
	AlertCancelled AlertEventType = "cancelled"
)

type DispatchAlert struct {
	DispatchID string         `json:"dispatch_id"`
	Event      AlertEventType `json:"event"`
	Priority   Priority       `json:"priority"`
	Location   GeoPoint       `json:"location"`
	Message    string         `json:"message"`
	Timestamp  int64          `json:"timestamp"`
}
