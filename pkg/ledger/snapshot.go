package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/pkg/badge"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ExportDocument bundles l into the downloadable backup format.
func ExportDocument(l entities.Ledger, now time.Time) domain.ExportDocument {
	return domain.ExportDocument{
		Weights:     nonNil(l.Weights),
		Meals:       nonNil(l.Meals),
		WaterIntake: nonNil(l.Water),
		Favorites:   nonNil(l.Favorites),
		Goals:       l.Goals,
		UserHeight:  l.Height,
		Streak:      l.Streak,
		Badges:      nonNil(l.Badges),
		ExportDate:  now.UTC(),
	}
}

// EncodeExport renders doc the way the browser app did: two-space indented
// JSON.
func EncodeExport(doc domain.ExportDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeExport reads a backup. Goals missing from the document keep their
// defaults.
func DecodeExport(data []byte) (domain.ExportDocument, error) {
	doc := domain.ExportDocument{Goals: entities.DefaultGoals()}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return domain.ExportDocument{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validateExport(doc); err != nil {
		return domain.ExportDocument{}, err
	}
	return doc, nil
}

// validateExport rejects meals and favorites with negative nutrition values.
func validateExport(doc domain.ExportDocument) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// LedgerFromExport rebuilds a ledger from a backup, moving legacy badge ids
// onto their current names.
func LedgerFromExport(doc domain.ExportDocument) entities.Ledger {
	return entities.Ledger{
		Meals:     nonNil(doc.Meals),
		Weights:   nonNil(doc.Weights),
		Water:     nonNil(doc.WaterIntake),
		Favorites: nonNil(doc.Favorites),
		Goals:     doc.Goals,
		Height:    doc.UserHeight,
		Streak:    doc.Streak,
		Badges:    badge.Normalize(doc.Badges),
	}
}
