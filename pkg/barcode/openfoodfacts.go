// Package barcode looks up packaged products by EAN/UPC code.
package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kalorikollen/domain"
)

const (
	DefaultBaseURL = "https://world.openfoodfacts.org"
	unknownProduct = "Okänd produkt"
)

type Lookup interface {
	Lookup(ctx context.Context, code string) (domain.BarcodeProduct, error)
}

type (
	OpenFoodFacts struct {
		BaseURL string
		HTTP    *http.Client
	}

	offResponse struct {
		Status  int `json:"status"`
		Product struct {
			ProductName string         `json:"product_name"`
			Brands      string         `json:"brands"`
			ImageURL    string         `json:"image_url"`
			Nutriments  map[string]any `json:"nutriments"`
		} `json:"product"`
	}
)

func NewOpenFoodFacts(baseURL string) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenFoodFacts{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Lookup returns domain.ErrProductNotFound when the database has no entry
// for code.
func (o *OpenFoodFacts) Lookup(ctx context.Context, code string) (domain.BarcodeProduct, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.BarcodeProduct{}, fmt.Errorf("%w: empty barcode", domain.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", o.BaseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.BarcodeProduct{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return domain.BarcodeProduct{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.BarcodeProduct{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, code)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return domain.BarcodeProduct{}, fmt.Errorf("openfoodfacts error: %s - %s", resp.Status, string(bodyBytes))
	}

	var off offResponse
	if err := json.NewDecoder(resp.Body).Decode(&off); err != nil {
		return domain.BarcodeProduct{}, err
	}
	if off.Status != 1 {
		return domain.BarcodeProduct{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, code)
	}

	p := off.Product
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = unknownProduct
	}
	return domain.BarcodeProduct{
		Barcode:         code,
		Name:            name,
		Brand:           strings.TrimSpace(p.Brands),
		CaloriesPer100g: int(math.Round(nutriment(p.Nutriments, "energy-kcal_100g"))),
		ProteinPer100g:  nutriment(p.Nutriments, "proteins_100g"),
		CarbsPer100g:    nutriment(p.Nutriments, "carbohydrates_100g"),
		FatPer100g:      nutriment(p.Nutriments, "fat_100g"),
		Image:           p.ImageURL,
	}, nil
}

// nutriment reads a value that the database sometimes serves as a string.
func nutriment(n map[string]any, key string) float64 {
	switch v := n[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.Replace(v, ",", ".", 1), "%g", &f); err == nil {
			return f
		}
	}
	return 0
}
