package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bnbprice/server/internal/models"
)

type Database struct {
	db *gorm.DB
}

// New opens the SQLite database at dbPath and runs schema migrations.
func New(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.Listing{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{db: db}, nil
}

// ReplaceListings deletes all stored listings and bulk-inserts the given
// batch in a single transaction.
func (d *Database) ReplaceListings(listings []models.Listing) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Listing{}).Error; err != nil {
			return fmt.Errorf("failed to clear listings: %w", err)
		}

		if len(listings) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(listings, 500).Error; err != nil {
			return fmt.Errorf("failed to insert listings: %w", err)
		}
		return nil
	})
}

// CountListings returns the number of stored listings.
func (d *Database) CountListings() (int64, error) {
	var count int64
	err := d.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}

// GetAllListings returns every stored listing.
func (d *Database) GetAllListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := d.db.Find(&listings).Error
	return listings, err
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
