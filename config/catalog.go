package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

// DefaultCatalog lists the ambulance types offered when no catalog file is
// configured.
func DefaultCatalog() []domain.AmbulanceType {
	return []domain.AmbulanceType{
		{
			ID:          "mo-ambulance",
			Name:        "Mo Ambulance (Govt.)",
			Description: "Free government ambulance service",
			Price:       "Free",
			ETARange:    "10-15 min",
		},
		{
			ID:          "red-ambulance",
			Name:        "Red Ambulance",
			Description: "Critical & Trauma Care equipped",
			Price:       "Free",
			ETARange:    "8-12 min",
		},
		{
			ID:          "private",
			Name:        "Private Ambulance",
			Description: "Premium service with advanced equipment",
			Price:       "₹1500",
			ETARange:    "12-15 min",
		},
		{
			ID:          "neonatal",
			Name:        "Neonatal/Pediatric",
			Description: "Specialized care for infants and children",
			Price:       "₹2000",
			ETARange:    "15-20 min",
		},
		{
			ID:          "air",
			Name:        "Air Ambulance",
			Description: "For extreme emergencies (subject to availability)",
			Price:       "On request",
			ETARange:    "30-45 min",
		},
	}
}

type catalogFile struct {
	AmbulanceTypes []domain.AmbulanceType `yaml:"ambulance_types"`
}

// LoadCatalog reads the ambulance catalog from a YAML file. An empty path
// yields the default catalog.
func LoadCatalog(path string) ([]domain.AmbulanceType, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]domain.AmbulanceType, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(cf.AmbulanceTypes) == 0 {
		return nil, fmt.Errorf("catalog: no ambulance types")
	}

	seen := make(map[string]bool, len(cf.AmbulanceTypes))
	for i, at := range cf.AmbulanceTypes {
		if at.ID == "" {
			return nil, fmt.Errorf("catalog: ambulance_types[%d]: id required", i)
		}
		if at.Name == "" {
			return nil, fmt.Errorf("catalog: %s: name required", at.ID)
		}
		if seen[at.ID] {
			return nil, fmt.Errorf("catalog: duplicate id %s", at.ID)
		}
		seen[at.ID] = true
	}
	return cf.AmbulanceTypes, nil
}
