package entities

import (
	"time"

	"github.com/google/uuid"
)

type Timestamp struct {
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// LedgerRecord is one persisted key of a device's ledger. Values are whole
// JSON snapshots; every write replaces the previous value.
type LedgerRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	DeviceID string    `gorm:"type:varchar(64);uniqueIndex:idx_ledger_device_key;not null" json:"device_id"`
	Key      string    `gorm:"type:varchar(32);uniqueIndex:idx_ledger_device_key;not null" json:"key"`
	Value    string    `gorm:"type:text" json:"value"`
	Timestamp
}
