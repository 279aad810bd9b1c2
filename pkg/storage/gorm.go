package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Entry struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string { return "kv_entries" }

// GormStore persists entries in a single table of any gorm dialect.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv: %w", err)
	}
	return &GormStore{DB: db}, nil
}

// OpenFile opens (or creates) a SQLite file at path.
func OpenFile(ctx context.Context, path string) (*GormStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	return NewGormStore(ctx, db)
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Where("name = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	e := Entry{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Where("name IN ?", keys).Delete(&Entry{}).Error
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
