package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnhistory/tour3d/internal/geo"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, []string{DienBienPhu, BaDinh, Saigon1975, KimLien, DoiMoi1986}, c.IDs())

	s, err := c.Get(Saigon1975)
	require.NoError(t, err)
	assert.Equal(t, 1975, s.Year)
	assert.Equal(t, MarkerCity, s.MarkerType)
	assert.InDelta(t, 10.7769, s.Coordinates.Lat, 1e-9)
	require.Len(t, s.CameraPath, 3)
	assert.Equal(t, mgl64.Vec3{0, 25, 70}, s.CameraPath[2].Position)
	assert.Equal(t, "power2.inOut", s.CameraPath[0].Ease)
}

func TestCatalog_GetUnknown(t *testing.T) {
	_, err := Default().Get("atlantis")
	assert.True(t, errors.Is(err, ErrUnknownSite))
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Site{{ID: "a"}, {ID: "a"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]Site{{ID: ""}})
	assert.Error(t, err)

	_, err = New([]Site{{ID: "x", Coordinates: geo.Coordinate{Lat: 91}}})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = New([]Site{{ID: "x", CameraPath: []Keyframe{{Duration: -1}}}})
	assert.Error(t, err)
}

func TestNew_Copies(t *testing.T) {
	sites := Defaults()
	c, err := New(sites)
	require.NoError(t, err)

	sites[0].Name = "changed"
	sites[0].CameraPath[0].Duration = 99

	s, _ := c.Get(DienBienPhu)
	assert.Equal(t, "Điện Biên Phủ", s.Name)
	assert.Equal(t, float64(3), s.CameraPath[0].Duration)
}

func TestSite_RGB(t *testing.T) {
	assert.Equal(t, [3]float32{1, 68.0 / 255, 68.0 / 255}, Site{Color: "#ff4444"}.RGB())
	assert.Equal(t, [3]float32{1, 1, 1}, Site{Color: "red"}.RGB())
}

func TestStore_SeedAndRead(t *testing.T) {
	store, err := OpenSqlite(filepath.Join(t.TempDir(), "catalog.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Setup())

	_, err = store.Sites()
	assert.Error(t, err, "empty catalog")

	seeded, err := store.Seed(Defaults())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = store.Seed(Defaults())
	require.NoError(t, err)
	assert.False(t, seeded, "existing rows are kept")

	sites, err := store.Sites()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), sites)
}

func TestLoad_Builtin(t *testing.T) {
	c, err := Load(Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	_, err = Load(Config{Source: "mongo"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoad_FromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("sites", []map[string]any{
		{
			"id":          "hue",
			"name":        "Huế",
			"year":        1968,
			"coordinates": map[string]any{"lat": 16.4637, "lng": 107.5909},
			"markerType":  "city",
			"cameraPath": []map[string]any{
				{"position": []float64{0, 40, 90}, "lookAt": []float64{0, 0, 0}, "duration": 2.5, "ease": "power1.inOut"},
			},
		},
	})

	c, err := Load(Config{Source: SourceConfig}, zerolog.Nop())
	require.NoError(t, err)
	s, err := c.Get("hue")
	require.NoError(t, err)
	assert.Equal(t, 1968, s.Year)
	assert.InDelta(t, 107.5909, s.Coordinates.Lng, 1e-9)
	require.Len(t, s.CameraPath, 1)
	assert.Equal(t, mgl64.Vec3{0, 40, 90}, s.CameraPath[0].Position)
	assert.Equal(t, 2.5, s.CameraPath[0].Duration)
}

func TestLoad_FromConfigEmpty(t *testing.T) {
	t.Cleanup(viper.Reset)
	_, err := Load(Config{Source: SourceConfig}, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoad_FromSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.db")

	_, err := Load(Config{Source: SourceSqlite, SqlitePath: path}, zerolog.Nop())
	assert.Error(t, err, "unseeded database is empty")

	c, err := Load(Config{Source: SourceSqlite, SqlitePath: path, Seed: true}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Default().IDs(), c.IDs())
}
