package catalog

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/geo"
)

// MarkerType selects the marker style drawn for a site.
type MarkerType string

const (
	MarkerBattle   MarkerType = "battle"
	MarkerMonument MarkerType = "monument"
	MarkerCity     MarkerType = "city"
)

// Keyframe is one authored camera pose in a site's camera path. Position and
// LookAt are relative to the site's projected position.
type Keyframe struct {
	Position mgl64.Vec3 `json:"position" mapstructure:"position"`
	LookAt   mgl64.Vec3 `json:"lookAt" mapstructure:"lookAt"`
	Duration float64    `json:"duration" mapstructure:"duration"`
	Ease     string     `json:"ease" mapstructure:"ease"`
}

// Site is a historical location on the tour.
type Site struct {
	ID               string         `json:"id" mapstructure:"id"`
	Name             string         `json:"name" mapstructure:"name"`
	Year             int            `json:"year" mapstructure:"year"`
	Coordinates      geo.Coordinate `json:"coordinates" mapstructure:"coordinates"`
	Title            string         `json:"title" mapstructure:"title"`
	Subtitle         string         `json:"subtitle" mapstructure:"subtitle"`
	Description      string         `json:"description" mapstructure:"description"`
	Color            string         `json:"color" mapstructure:"color"`
	MarkerType       MarkerType     `json:"markerType" mapstructure:"markerType"`
	CameraPath       []Keyframe     `json:"cameraPath" mapstructure:"cameraPath"`
	IllustrationType string         `json:"illustrationType" mapstructure:"illustrationType"`
}

// Validate checks the fields the tour depends on.
func (s Site) Validate() error {
	if s.ID == "" {
		return errors.New("site id is empty")
	}
	c := s.Coordinates
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("site %s: %w", s.ID, geo.ErrInvalidCoordinates)
	}
	for i, k := range s.CameraPath {
		if k.Duration < 0 {
			return fmt.Errorf("site %s: keyframe %d has negative duration", s.ID, i)
		}
	}
	return nil
}

// RGB parses Color ("#rrggbb") into 0..1 components. Malformed colors yield
// white.
func (s Site) RGB() [3]float32 {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s.Color, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return [3]float32{1, 1, 1}
	}
	return [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}
