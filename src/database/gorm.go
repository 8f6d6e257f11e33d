package database

import (
	"fmt"

	"github.com/gmgifpe/asset-tracker/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupGormDB opens a GORM handle on the same database as the pgx pool.
// The user model and the migration runner go through GORM.
func SetupGormDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Databases.SQL.ConnectionString
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Databases.SQL.Host,
			cfg.Databases.SQL.Username,
			cfg.Databases.SQL.Password,
			cfg.Databases.SQL.Database,
			cfg.Databases.SQL.Port)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
