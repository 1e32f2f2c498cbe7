package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vnhistory/tour3d/internal/asset"
	"github.com/vnhistory/tour3d/internal/cache"
	"github.com/vnhistory/tour3d/internal/camera"
	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/world"
)

// FileName is the config file looked up in the config dir.
const FileName = "tour3d.cfg.json"

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; hosts running
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./tour3dlogs")

	viper.SetDefault("assets.root", "./models")
	viper.SetDefault("assets.baseUrl", "")
	viper.SetDefault("assets.budgetMB", asset.DefaultBudget>>20)
	viper.SetDefault("assets.policy", string(cache.FIFO))
	viper.SetDefault("assets.maxConcurrent", asset.DefaultMaxConcurrent)
	viper.SetDefault("assets.enableDraco", true)
	viper.SetDefault("assets.enableLOD", true)
	viper.SetDefault("assets.maxTextureSize", asset.DefaultMaxTextureSize)
	viper.SetDefault("assets.castShadow", true)
	viper.SetDefault("assets.receiveShadow", true)
	viper.SetDefault("assets.frustumCulled", true)

	viper.SetDefault("projection.kind", string(geo.KindLinear))
	viper.SetDefault("projection.centerLat", geo.DefaultCenterLat)
	viper.SetDefault("projection.centerLng", geo.DefaultCenterLng)
	viper.SetDefault("projection.scale", geo.DefaultScale)
	viper.SetDefault("projection.elevationScale", geo.DefaultElevationScale)
	viper.SetDefault("projection.metersPerUnit", geo.DefaultMetersPerUnit)

	cam := camera.DefaultConfig()
	viper.SetDefault("camera.flightDuration", cam.FlightDuration)
	viper.SetDefault("camera.tourLegDuration", cam.TourLegDuration)
	viper.SetDefault("camera.tourPause", cam.TourPause)
	viper.SetDefault("camera.arcSamples", cam.ArcSamples)
	viper.SetDefault("camera.arcHeight", cam.ArcHeight)
	viper.SetDefault("camera.tension", cam.Tension)
	viper.SetDefault("camera.centripetal", cam.Centripetal)
	viper.SetDefault("camera.resetDuration", cam.ResetDuration)
	viper.SetDefault("camera.seed", cam.Seed)

	w := world.DefaultConfig()
	viper.SetDefault("world.segments", w.Segments)
	viper.SetDefault("world.elevationScale", w.ElevationScale)
	viper.SetDefault("world.particles", w.Particles)
	viper.SetDefault("world.particleSpread", w.ParticleSpread)
	viper.SetDefault("world.particleHeight", w.ParticleHeight)
	viper.SetDefault("world.seed", w.Seed)
	viper.SetDefault("world.bounds.north", w.Bounds.North)
	viper.SetDefault("world.bounds.south", w.Bounds.South)
	viper.SetDefault("world.bounds.east", w.Bounds.East)
	viper.SetDefault("world.bounds.west", w.Bounds.West)

	viper.SetDefault("diorama.seed", 1)

	viper.SetDefault("catalog.source", string(catalog.SourceBuiltin))
	viper.SetDefault("catalog.sqlitePath", "./tour3d.db")
	viper.SetDefault("catalog.seed", false)
	viper.SetDefault("catalog.postgres.host", "localhost")
	viper.SetDefault("catalog.postgres.port", "5432")
	viper.SetDefault("catalog.postgres.username", "postgres")
	viper.SetDefault("catalog.postgres.password", "postgres")
	viper.SetDefault("catalog.postgres.database", "tour3d")

	viper.SetDefault("run.frameRate", 60)
	viper.SetDefault("run.mode", "realtime")
	viper.SetDefault("run.duration", "0s")
	viper.SetDefault("run.tour", true)
	viper.SetDefault("run.queueLimit", 64)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "tour3d")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "tour3d")
	viper.SetDefault("influx.interval", "1s")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.address", ":2112")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// AssetConfig holds loader settings and the per-load options.
type AssetConfig struct {
	Root    string
	BaseURL string
	Loader  asset.Config
	Options asset.Options
}

// Path resolves a model file name against BaseURL when set.
func (c AssetConfig) Path(file string) string {
	if c.BaseURL == "" {
		return file
	}
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(file, "/")
}

// GetAssetConfig returns the asset loader settings.
func GetAssetConfig() (AssetConfig, error) {
	policy, err := cache.ParsePolicy(viper.GetString("assets.policy"))
	if err != nil {
		return AssetConfig{}, err
	}
	return AssetConfig{
		Root:    viper.GetString("assets.root"),
		BaseURL: viper.GetString("assets.baseUrl"),
		Loader: asset.Config{
			Budget:        viper.GetInt64("assets.budgetMB") << 20,
			Policy:        policy,
			MaxConcurrent: viper.GetInt("assets.maxConcurrent"),
		},
		Options: asset.Options{
			EnableDraco:    viper.GetBool("assets.enableDraco"),
			EnableLOD:      viper.GetBool("assets.enableLOD"),
			MaxTextureSize: viper.GetInt("assets.maxTextureSize"),
			CastShadow:     viper.GetBool("assets.castShadow"),
			ReceiveShadow:  viper.GetBool("assets.receiveShadow"),
			FrustumCulled:  viper.GetBool("assets.frustumCulled"),
		},
	}, nil
}

// GetProjectionConfig returns the geo projection settings.
func GetProjectionConfig() geo.ProjectionConfig {
	return geo.ProjectionConfig{
		Kind: geo.ProjectionKind(strings.ToLower(viper.GetString("projection.kind"))),
		Center: geo.Coordinate{
			Lat: viper.GetFloat64("projection.centerLat"),
			Lng: viper.GetFloat64("projection.centerLng"),
		},
		Scale:          viper.GetFloat64("projection.scale"),
		ElevationScale: viper.GetFloat64("projection.elevationScale"),
		MetersPerUnit:  viper.GetFloat64("projection.metersPerUnit"),
	}
}

// GetCameraConfig returns the flight controller settings.
func GetCameraConfig() camera.Config {
	return camera.Config{
		FlightDuration:  viper.GetFloat64("camera.flightDuration"),
		TourLegDuration: viper.GetFloat64("camera.tourLegDuration"),
		TourPause:       viper.GetFloat64("camera.tourPause"),
		ArcSamples:      viper.GetInt("camera.arcSamples"),
		ArcHeight:       viper.GetFloat64("camera.arcHeight"),
		Tension:         viper.GetFloat64("camera.tension"),
		Centripetal:     viper.GetBool("camera.centripetal"),
		ResetDuration:   viper.GetFloat64("camera.resetDuration"),
		Seed:            viper.GetUint64("camera.seed"),
	}
}

// GetWorldConfig returns the terrain and world settings.
func GetWorldConfig() world.Config {
	return world.Config{
		Segments: viper.GetInt("world.segments"),
		Bounds: geo.Bounds{
			North: viper.GetFloat64("world.bounds.north"),
			South: viper.GetFloat64("world.bounds.south"),
			East:  viper.GetFloat64("world.bounds.east"),
			West:  viper.GetFloat64("world.bounds.west"),
		},
		ElevationScale: viper.GetFloat64("world.elevationScale"),
		Particles:      viper.GetInt("world.particles"),
		ParticleSpread: viper.GetFloat64("world.particleSpread"),
		ParticleHeight: viper.GetFloat64("world.particleHeight"),
		Seed:           viper.GetUint64("world.seed"),
	}
}

// GetDioramaSeed returns the seed for crowd jitter.
func GetDioramaSeed() uint64 {
	return viper.GetUint64("diorama.seed")
}

// GetCatalogConfig returns the site catalog source settings.
func GetCatalogConfig() catalog.Config {
	return catalog.Config{
		Source:     catalog.Source(strings.ToLower(viper.GetString("catalog.source"))),
		SqlitePath: viper.GetString("catalog.sqlitePath"),
		Seed:       viper.GetBool("catalog.seed"),
		Postgres: catalog.PostgresConfig{
			Host:     viper.GetString("catalog.postgres.host"),
			Port:     viper.GetString("catalog.postgres.port"),
			Username: viper.GetString("catalog.postgres.username"),
			Password: viper.GetString("catalog.postgres.password"),
			Database: viper.GetString("catalog.postgres.database"),
		},
	}
}

// RunConfig holds the host frame loop settings.
type RunConfig struct {
	FrameRate  int
	Mode       string
	Duration   time.Duration
	Tour       bool
	QueueLimit int
}

// Tick returns the frame duration.
func (c RunConfig) Tick() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}

// GetRunConfig returns the host frame loop settings.
func GetRunConfig() RunConfig {
	return RunConfig{
		FrameRate:  viper.GetInt("run.frameRate"),
		Mode:       strings.ToLower(viper.GetString("run.mode")),
		Duration:   viper.GetDuration("run.duration"),
		Tour:       viper.GetBool("run.tour"),
		QueueLimit: viper.GetInt("run.queueLimit"),
	}
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// InfluxConfig holds the frame telemetry sink settings.
type InfluxConfig struct {
	Enabled  bool
	URL      string
	Token    string
	Org      string
	Interval time.Duration
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL: fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Interval: viper.GetDuration("influx.interval"),
	}
}

// GraylogConfig holds the GELF sink settings.
type GraylogConfig struct {
	Enabled bool
	Address string
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// MetricsConfig holds the prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool
	Address string
}

// GetMetricsConfig returns the prometheus endpoint settings.
func GetMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: viper.GetBool("metrics.enabled"),
		Address: viper.GetString("metrics.address"),
	}
}
