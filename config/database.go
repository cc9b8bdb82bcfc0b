package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/swarajb-778/StockPilot/models"
)

// OpenDB connects to PostgreSQL and applies connection pooling settings.
// The returned handle is shared by every service for the life of the process.
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), GormConfig(cfg.DBLogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdle)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// GormConfig returns the shared gorm settings: UTC timestamps and the requested log level.
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(parseLogLevel(level)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Product{},
		&models.Sale{},
		&models.Purchase{},
		&models.SalesSummary{},
		&models.PurchaseSummary{},
		&models.ExpenseSummary{},
		&models.ExpenseByCategory{},
		&models.Expense{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
