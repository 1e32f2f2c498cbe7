package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// BuildArcPath returns samples+1 points from start to end. x and z are
// interpolated linearly; y follows the linear baseline lifted by
// sin(pi*t)*arcHeight, so both ends sit on the baseline.
func BuildArcPath(start, end mgl64.Vec3, samples int, arcHeight float64) []mgl64.Vec3 {
	if samples < 1 {
		samples = 1
	}
	points := make([]mgl64.Vec3, samples+1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		points[i] = mgl64.Vec3{
			Lerp(start.X(), end.X(), t),
			Lerp(start.Y(), end.Y(), t) + math.Sin(math.Pi*t)*arcHeight,
			Lerp(start.Z(), end.Z(), t),
		}
	}
	// pin the ends so sin(pi) rounding never leaks into the terminal pose
	points[0] = start
	points[samples] = end
	return points
}

// ParsePath parses a JSON array of [x,y,z] triples into scene points.
// Input format: "[[x1,y1,z1],[x2,y2,z2],...]"
func ParsePath(input string) ([]mgl64.Vec3, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse path JSON: %w", err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("path must have at least 2 points, got %d", len(coords))
	}

	points := make([]mgl64.Vec3, len(coords))
	for i, coord := range coords {
		if len(coord) < 3 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		points[i] = mgl64.Vec3{coord[0], coord[1], coord[2]}
	}

	return points, nil
}

// GroundTrack projects points onto the ground plane as an (x, z) line string.
// Fewer than two points give an empty line string. A purely vertical path
// has no footprint and is an error.
func GroundTrack(points []mgl64.Vec3) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, nil
	}
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X(), p.Z())
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("ground track: %w", err)
	}
	return ls, nil
}

// PathLength returns the summed 3D segment length of points.
func PathLength(points []mgl64.Vec3) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i].Sub(points[i-1]).Len()
	}
	return total
}
