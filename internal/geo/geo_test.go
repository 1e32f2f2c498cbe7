package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate_WithAltitude(t *testing.T) {
	c, err := ParseCoordinate("21.3891,103.0178,500")
	require.NoError(t, err)

	assert.Equal(t, 21.3891, c.Lat)
	assert.Equal(t, 103.0178, c.Lng)
	assert.Equal(t, 500.0, c.Alt)
}

func TestParseCoordinate_WithoutAltitude(t *testing.T) {
	c, err := ParseCoordinate(" 10.7769, 106.7009 ")
	require.NoError(t, err)

	assert.Equal(t, 10.7769, c.Lat)
	assert.Equal(t, 106.7009, c.Lng)
	assert.Zero(t, c.Alt)
}

func TestParseCoordinate_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"one value":    "21.0",
		"four values":  "1,2,3,4",
		"bad lat":      "abc,105",
		"bad alt":      "21,105,high",
		"out of range": "91,105",
		"nan":          "NaN,105",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCoordinate(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCoordinates))
		})
	}
}

func TestCoordinate_Point(t *testing.T) {
	p, err := Coordinate{Lat: 21.0368, Lng: 105.8342, Alt: 10}.Point()
	require.NoError(t, err)

	coords, ok := p.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 105.8342, coords.X)
	assert.Equal(t, 21.0368, coords.Y)
	assert.Equal(t, 10.0, coords.Z)

	_, err = Coordinate{Lat: math.NaN(), Lng: 105}.Point()
	assert.Error(t, err)
}

func TestDistance_HanoiToSaigon(t *testing.T) {
	hanoi := Coordinate{Lat: 21.0368, Lng: 105.8342}
	saigon := Coordinate{Lat: 10.7769, Lng: 106.7009}

	d := Distance(hanoi, saigon)
	assert.InDelta(t, 1143, d, 10)
	assert.InDelta(t, d, Distance(saigon, hanoi), 1e-9)
	assert.Zero(t, Distance(hanoi, hanoi))
}

func TestBearing_Cardinal(t *testing.T) {
	origin := Coordinate{Lat: 16, Lng: 106}

	assert.InDelta(t, 0, Bearing(origin, Coordinate{Lat: 17, Lng: 106}), 1e-9)
	assert.InDelta(t, 180, Bearing(origin, Coordinate{Lat: 15, Lng: 106}), 1e-9)
	assert.InDelta(t, 90, Bearing(origin, Coordinate{Lat: 16, Lng: 107}), 0.2)
	assert.InDelta(t, 270, Bearing(origin, Coordinate{Lat: 16, Lng: 105}), 0.2)
}

func TestBounds(t *testing.T) {
	b := VietnamBounds

	assert.InDelta(t, 15.2135839, b.LatRange(), 1e-6)
	assert.InDelta(t, 7.31991, b.LngRange(), 1e-6)
	assert.True(t, b.Contains(Coordinate{Lat: 21.0368, Lng: 105.8342}))
	assert.False(t, b.Contains(Coordinate{Lat: 35, Lng: 105}))

	c := b.Center()
	assert.InDelta(t, (b.North+b.South)/2, c.Lat, 1e-12)
	assert.InDelta(t, (b.East+b.West)/2, c.Lng, 1e-12)

	outline, err := b.Outline()
	require.NoError(t, err)
	assert.InDelta(t, 2*(b.LatRange()+b.LngRange()), outline.Length(), 1e-9)
}

func TestBounds_OutlineRejectsDegenerate(t *testing.T) {
	_, err := Bounds{North: 16, South: 16, East: 106, West: 106}.Outline()
	assert.Error(t, err)

	_, err = Bounds{North: math.Inf(1), South: 8, East: 109, West: 102}.Outline()
	assert.Error(t, err)
}

func TestGroundTrack(t *testing.T) {
	track, err := GroundTrack([]mgl64.Vec3{{0, 100, 0}, {3, 0, 4}})
	require.NoError(t, err)
	assert.InDelta(t, 5, track.Length(), 1e-12)

	empty, err := GroundTrack(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = GroundTrack([]mgl64.Vec3{{1, 0, 2}, {1, 50, 2}})
	assert.Error(t, err, "a vertical climb has no footprint")
}

func TestParsePath(t *testing.T) {
	points, err := ParsePath(`[[0,80,80],[-20,60,40],[10,70,0]]`)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, mgl64.Vec3{-20, 60, 40}, points[1])

	_, err = ParsePath(`[[0,80,80]]`)
	assert.Error(t, err)
	_, err = ParsePath(`[[0,80],[1,2]]`)
	assert.Error(t, err)
	_, err = ParsePath(`not json`)
	assert.Error(t, err)
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.InDelta(t, 12, PathLength([]mgl64.Vec3{{0, 0, 0}, {3, 4, 0}, {3, 4, 7}}), 1e-12)
	assert.InDelta(t, math.Sqrt(3), PathLength([]mgl64.Vec3{{0, 0, 0}, {1, 1, 1}}), 1e-12)
}
