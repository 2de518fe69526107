package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDatabase(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := db.AutoMigrate(&Trade{}, &Asset{}, &CashBalance{}, &Strategy{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if err := seedCashBalance(db); err != nil {
		return nil, err
	}

	return db, nil
}

func seedCashBalance(db *gorm.DB) error {
	row := CashBalance{ID: CashBalanceID, LastUpdated: time.Now()}
	if err := db.Where("id = ?", CashBalanceID).FirstOrCreate(&row).Error; err != nil {
		return fmt.Errorf("seed cash balance: %w", err)
	}
	return nil
}
