package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const earthRadiusKm = 6371.0

// Coordinate is a geographic position. Altitude is in meters.
type Coordinate struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng"`
	Alt float64 `json:"alt" mapstructure:"alt"`
}

// ParseCoordinate parses a string in the format "lat,lng" or "lat,lng,alt".
func ParseCoordinate(coords string) (Coordinate, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, ErrInvalidCoordinates
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Coordinate{}, ErrInvalidCoordinates
		}
		values[i] = v
	}
	c := Coordinate{Lat: values[0], Lng: values[1]}
	if len(values) == 3 {
		c.Alt = values[2]
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return Coordinate{}, ErrInvalidCoordinates
	}
	return c, nil
}

// Point returns the coordinate as a lon/lat/alt point. NaN or infinite
// components are rejected.
func (c Coordinate) Point() (geom.Point, error) {
	p, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: c.Lng, Y: c.Lat},
		Z:    c.Alt,
		Type: geom.DimXYZ,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("point for %v,%v: %w", c.Lat, c.Lng, err)
	}
	return p, nil
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Coordinate) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing returns the initial bearing from a to b in degrees, 0..360 clockwise from north.
func Bearing(a, b Coordinate) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLng := radians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Bounds is a lat/lng rectangle.
type Bounds struct {
	North float64 `json:"north" mapstructure:"north"`
	South float64 `json:"south" mapstructure:"south"`
	East  float64 `json:"east" mapstructure:"east"`
	West  float64 `json:"west" mapstructure:"west"`
}

// VietnamBounds covers the mainland territory shown by the tour.
var VietnamBounds = Bounds{
	North: 23.3926504,
	South: 8.1790665,
	East:  109.46432,
	West:  102.14441,
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() Coordinate {
	return Coordinate{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

// LatRange returns the north-south extent in degrees.
func (b Bounds) LatRange() float64 { return b.North - b.South }

// LngRange returns the east-west extent in degrees.
func (b Bounds) LngRange() float64 { return b.East - b.West }

// Contains reports whether c lies inside the rectangle, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// Outline returns the closed lon/lat ring of the rectangle. Degenerate
// rectangles (a single point) and non-finite edges are an error.
func (b Bounds) Outline() (geom.LineString, error) {
	seq := geom.NewSequence([]float64{
		b.West, b.South,
		b.East, b.South,
		b.East, b.North,
		b.West, b.North,
		b.West, b.South,
	}, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("bounds outline: %w", err)
	}
	return ls, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
