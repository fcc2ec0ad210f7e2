package config

import (
	"fmt"

	"googlemaps.github.io/maps"
)

// NewMapsClient returns nil when no API key is configured.
func NewMapsClient(cfg *Config) (*maps.Client, error) {
	if cfg.GoogleMapsAPIKey == "" {
		return nil, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(cfg.GoogleMapsAPIKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return client, nil
}
