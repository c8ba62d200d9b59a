package store

import "context"

// Keys under which a device's ledger is persisted. Values are whole JSON
// snapshots except KeyHeight and KeyStreak, which are stored as plain text.
const (
	KeyWeights   = "weights"
	KeyMeals     = "meals"
	KeyWater     = "water"
	KeyFavorites = "favorites"
	KeyGoals     = "goals"
	KeyHeight    = "height"
	KeyStreak    = "streak"
	KeyBadges    = "badges"
)

var Keys = []string{
	KeyWeights, KeyMeals, KeyWater, KeyFavorites,
	KeyGoals, KeyHeight, KeyStreak, KeyBadges,
}

type (
	// Store is one device's key-value space. Set overwrites the whole value.
	Store interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key, value string) error
	}

	// Provider hands out the Store for a device.
	Provider interface {
		ForDevice(deviceID string) Store
	}
)
