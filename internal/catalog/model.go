package catalog

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnhistory/tour3d/internal/geo"
)

// SiteRecord is the database row for a Site. Keyframes are stored as JSON.
type SiteRecord struct {
	gorm.Model
	SiteID           string `gorm:"size:64;uniqueIndex"`
	SortOrder        int    `gorm:"index"`
	Name             string `gorm:"size:255"`
	Year             int
	Lat              float64
	Lng              float64
	Alt              float64
	Title            string `gorm:"size:255"`
	Subtitle         string `gorm:"size:255"`
	Description      string
	Color            string `gorm:"size:16"`
	MarkerType       string `gorm:"size:32"`
	IllustrationType string `gorm:"size:64"`
	CameraPath       datatypes.JSON
}

func (*SiteRecord) TableName() string {
	return "sites"
}

func siteToRecord(s Site, order int) (SiteRecord, error) {
	path := datatypes.JSON("[]")
	if len(s.CameraPath) > 0 {
		b, err := json.Marshal(s.CameraPath)
		if err != nil {
			return SiteRecord{}, fmt.Errorf("encoding camera path for %s: %w", s.ID, err)
		}
		path = datatypes.JSON(b)
	}
	return SiteRecord{
		SiteID:           s.ID,
		SortOrder:        order,
		Name:             s.Name,
		Year:             s.Year,
		Lat:              s.Coordinates.Lat,
		Lng:              s.Coordinates.Lng,
		Alt:              s.Coordinates.Alt,
		Title:            s.Title,
		Subtitle:         s.Subtitle,
		Description:      s.Description,
		Color:            s.Color,
		MarkerType:       string(s.MarkerType),
		IllustrationType: s.IllustrationType,
		CameraPath:       path,
	}, nil
}

func recordToSite(r SiteRecord) (Site, error) {
	var path []Keyframe
	if len(r.CameraPath) > 0 {
		if err := json.Unmarshal(r.CameraPath, &path); err != nil {
			return Site{}, fmt.Errorf("decoding camera path for %s: %w", r.SiteID, err)
		}
	}
	return Site{
		ID:               r.SiteID,
		Name:             r.Name,
		Year:             r.Year,
		Coordinates:      geo.Coordinate{Lat: r.Lat, Lng: r.Lng, Alt: r.Alt},
		Title:            r.Title,
		Subtitle:         r.Subtitle,
		Description:      r.Description,
		Color:            r.Color,
		MarkerType:       MarkerType(r.MarkerType),
		CameraPath:       path,
		IllustrationType: r.IllustrationType,
	}, nil
}
