package domain

import (
	"fmt"
	"math"
)

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate rejects out-of-range and NaN coordinates.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f must be between -90 and 90", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %f must be between -180 and 180", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// Offset returns p shifted by the given degrees on both axes.
func (p GeoPoint) Offset(deg float64) GeoPoint {
	return GeoPoint{Lat: p.Lat + deg, Lon: p.Lon + deg}
}
