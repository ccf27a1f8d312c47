package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/neo"
)

// ErrNoCloseApproach is returned when a feed object has no close-approach entry.
var ErrNoCloseApproach = errors.New("no close-approach data")

// Record is the enriched, publish-ready form of one observed object.
type Record struct {
	ID              string         `json:"id"`
	Name            string         `json:"asteroid"`
	DiameterKm      float64        `json:"diameter_km"`
	VelocityKph     float64        `json:"velocity_kph"`
	OrbitalElements map[string]any `json:"orbital_elements"`
}

// BuildRecord combines a feed object with the orbital data looked up for it.
func BuildRecord(obj neo.NearEarthObject, orbital map[string]any) (Record, error) {
	if strings.TrimSpace(obj.ID) == "" {
		return Record{}, errors.New("object has empty id")
	}
	if len(obj.CloseApproachData) == 0 {
		return Record{}, fmt.Errorf("object %s: %w", obj.ID, ErrNoCloseApproach)
	}
	if orbital == nil {
		return Record{}, fmt.Errorf("object %s: %w", obj.ID, neo.ErrMissingOrbitalData)
	}

	velocity, err := obj.CloseApproachData[0].RelativeVelocity.KilometersPerHour.Float64()
	if err != nil {
		return Record{}, fmt.Errorf("object %s: parse velocity: %w", obj.ID, err)
	}

	return Record{
		ID:              obj.ID,
		Name:            obj.Name,
		DiameterKm:      obj.EstimatedDiameter.Kilometers.Max,
		VelocityKph:     velocity,
		OrbitalElements: orbital,
	}, nil
}

// Encode renders the record as the queue message body.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}
