package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/store"

	"github.com/gofiber/fiber/v2/log"
)

type (
	LedgerRepository interface {
		Load(ctx context.Context, deviceID string) (entities.Ledger, error)
		// Save writes the given keys of l, or every key when none are given.
		Save(ctx context.Context, deviceID string, l entities.Ledger, keys ...string) error
	}

	ledgerRepository struct {
		stores store.Provider
	}
)

func NewLedgerRepository(stores store.Provider) LedgerRepository {
	return &ledgerRepository{stores: stores}
}

// Load starts from a fresh ledger and overlays whatever keys are stored. A
// value that no longer decodes is logged and left at its default.
func (r *ledgerRepository) Load(ctx context.Context, deviceID string) (entities.Ledger, error) {
	s := r.stores.ForDevice(deviceID)
	l := entities.NewLedger()

	for _, key := range store.Keys {
		raw, ok, err := s.Get(ctx, key)
		if err != nil {
			return entities.Ledger{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if !ok {
			continue
		}
		if err := decodeKey(&l, key, raw); err != nil {
			log.Warnf("ledger %s: ignoring unreadable %q: %v", deviceID, key, err)
		}
	}
	return l, nil
}

func decodeKey(l *entities.Ledger, key, raw string) error {
	switch key {
	case store.KeyWeights:
		return json.Unmarshal([]byte(raw), &l.Weights)
	case store.KeyMeals:
		return json.Unmarshal([]byte(raw), &l.Meals)
	case store.KeyWater:
		return json.Unmarshal([]byte(raw), &l.Water)
	case store.KeyFavorites:
		return json.Unmarshal([]byte(raw), &l.Favorites)
	case store.KeyGoals:
		goals := entities.DefaultGoals()
		if err := json.Unmarshal([]byte(raw), &goals); err != nil {
			return err
		}
		l.Goals = goals
	case store.KeyHeight:
		l.Height = entities.NumericText(raw)
	case store.KeyStreak:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		l.Streak = n
	case store.KeyBadges:
		return json.Unmarshal([]byte(raw), &l.Badges)
	}
	return nil
}

func (r *ledgerRepository) Save(ctx context.Context, deviceID string, l entities.Ledger, keys ...string) error {
	if len(keys) == 0 {
		keys = store.Keys
	}
	s := r.stores.ForDevice(deviceID)

	var errs []error
	for _, key := range keys {
		raw, err := encodeKey(l, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s: %w", key, err))
			continue
		}
		if err := s.Set(ctx, key, raw); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func encodeKey(l entities.Ledger, key string) (string, error) {
	var v any
	switch key {
	case store.KeyWeights:
		v = nonNil(l.Weights)
	case store.KeyMeals:
		v = nonNil(l.Meals)
	case store.KeyWater:
		v = nonNil(l.Water)
	case store.KeyFavorites:
		v = nonNil(l.Favorites)
	case store.KeyGoals:
		v = l.Goals
	case store.KeyHeight:
		return string(l.Height), nil
	case store.KeyStreak:
		return strconv.Itoa(l.Streak), nil
	case store.KeyBadges:
		v = nonNil(l.Badges)
	default:
		return "", fmt.Errorf("unknown key %q", key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
