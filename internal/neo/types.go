package neo

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// DayLayout is the date format used by the feed for range bounds and keys.
const DayLayout = "2006-01-02"

// FeedResponse is the body returned by the feed endpoint.
type FeedResponse struct {
	ElementCount     int                          `json:"element_count"`
	NearEarthObjects map[string][]NearEarthObject `json:"near_earth_objects"`
}

// NearEarthObject is one observed object in a feed day.
type NearEarthObject struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	EstimatedDiameter EstimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []CloseApproach   `json:"close_approach_data"`
}

// EstimatedDiameter holds the diameter ranges per unit.
type EstimatedDiameter struct {
	Kilometers DiameterRange `json:"kilometers"`
}

// DiameterRange is a min/max estimate.
type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// CloseApproach is one close-approach entry.
type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
}

// RelativeVelocity values arrive as JSON strings.
type RelativeVelocity struct {
	KilometersPerHour Velocity `json:"kilometers_per_hour"`
}

// Velocity is the raw text of a velocity field. It is kept unparsed so a
// single malformed value fails only the object that carries it.
type Velocity string

// UnmarshalJSON accepts both quoted and bare numeric values.
func (v *Velocity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Velocity(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	*v = Velocity(data)
	return nil
}

// Float64 parses the velocity.
func (v Velocity) Float64() (float64, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, errors.New("empty velocity")
	}
	return strconv.ParseFloat(s, 64)
}

// DetailResponse is the body returned by the lookup endpoint.
type DetailResponse struct {
	ID          string         `json:"id"`
	OrbitalData map[string]any `json:"orbital_data"`
}
