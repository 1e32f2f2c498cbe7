package catalog

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Source names where sites come from.
type Source string

const (
	SourceBuiltin  Source = "builtin"
	SourceConfig   Source = "config"
	SourceSqlite   Source = "sqlite"
	SourcePostgres Source = "postgres"
)

// Config selects and configures the catalog source.
type Config struct {
	Source     Source         `json:"source" mapstructure:"source"`
	SqlitePath string         `json:"sqlitePath" mapstructure:"sqlitePath"`
	Postgres   PostgresConfig `json:"postgres" mapstructure:"postgres"`
	// Seed writes the built-in sites into an empty database.
	Seed bool `json:"seed" mapstructure:"seed"`
}

// Load builds a catalog from the configured source. Database sources are
// opened, read and closed again.
func Load(cfg Config, log zerolog.Logger) (*Catalog, error) {
	switch cfg.Source {
	case SourceBuiltin, "":
		return New(Defaults())

	case SourceConfig:
		var sites []Site
		if err := viper.UnmarshalKey("sites", &sites); err != nil {
			return nil, fmt.Errorf("reading sites from config: %w", err)
		}
		if len(sites) == 0 {
			return nil, fmt.Errorf("no sites in config")
		}
		return New(sites)

	case SourceSqlite, SourcePostgres:
		var (
			store *Store
			err   error
		)
		if cfg.Source == SourceSqlite {
			store, err = OpenSqlite(cfg.SqlitePath, log)
		} else {
			store, err = OpenPostgres(cfg.Postgres, log)
		}
		if err != nil {
			return nil, fmt.Errorf("opening %s catalog: %w", cfg.Source, err)
		}
		defer store.Close()
		return loadFromStore(store, cfg.Seed)

	default:
		return nil, fmt.Errorf("unknown catalog source: %q", cfg.Source)
	}
}

func loadFromStore(store *Store, seed bool) (*Catalog, error) {
	if err := store.Setup(); err != nil {
		return nil, err
	}
	if seed {
		if _, err := store.Seed(Defaults()); err != nil {
			return nil, err
		}
	}
	sites, err := store.Sites()
	if err != nil {
		return nil, err
	}
	return New(sites)
}
