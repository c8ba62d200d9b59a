package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kalorikollen/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm stores ledgers as LedgerRecord rows, one per device and key.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) ForDevice(deviceID string) Store {
	return &gormStore{db: g.db, device: deviceID}
}

type gormStore struct {
	db     *gorm.DB
	device string
}

func (s *gormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var record entities.LedgerRecord
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND key = ?", s.device, key).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return record.Value, true, nil
}

func (s *gormStore) Set(ctx context.Context, key, value string) error {
	now := time.Now()
	record := entities.LedgerRecord{
		DeviceID: s.device,
		Key:      key,
		Value:    value,
		Timestamp: entities.Timestamp{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
