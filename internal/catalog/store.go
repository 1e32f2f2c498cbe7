package catalog

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresConfig holds connection settings for a Postgres catalog.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN returns the libpq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// Store reads and seeds sites in a SQL database.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// OpenPostgres connects to a Postgres catalog.
func OpenPostgres(cfg PostgresConfig, log zerolog.Logger) (*Store, error) {
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres catalog")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &Store{DB: db, Logger: log}, nil
}

// OpenSqlite opens a SQLite catalog. An empty path opens a shared in-memory
// database.
func OpenSqlite(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	if path == "" {
		log.Info().Msg("Using in-memory SQLite catalog")
	} else {
		log.Info().Str("path", path).Msg("Using SQLite catalog")
	}
	return &Store{DB: db, Logger: log}, nil
}

// Setup migrates the sites table.
func (s *Store) Setup() error {
	if err := s.DB.AutoMigrate(&SiteRecord{}); err != nil {
		return fmt.Errorf("failed to migrate sites table: %w", err)
	}
	return nil
}

// Seed writes sites into an empty table. It reports whether anything was
// written; a non-empty table is left alone.
func (s *Store) Seed(sites []Site) (bool, error) {
	var count int64
	if err := s.DB.Model(&SiteRecord{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting sites: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	records := make([]SiteRecord, 0, len(sites))
	for i, site := range sites {
		r, err := siteToRecord(site, i)
		if err != nil {
			return false, err
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		return false, nil
	}
	if err := s.DB.Create(&records).Error; err != nil {
		return false, fmt.Errorf("seeding sites: %w", err)
	}
	s.Logger.Info().Int("count", len(records)).Msg("Seeded site catalog")
	return true, nil
}

// Sites returns every stored site in sort order.
func (s *Store) Sites() ([]Site, error) {
	var records []SiteRecord
	if err := s.DB.Order("sort_order, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("site catalog is empty")
	}
	sites := make([]Site, 0, len(records))
	for _, r := range records {
		site, err := recordToSite(r)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
