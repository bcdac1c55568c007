package store

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
)

//go:embed seed.json
var defaultSeed []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type seedDocument struct {
	Products    []seedProduct    `json:"products"`
	Ingredients []seedIngredient `json:"ingredients"`
	Suppliers   []seedSupplier   `json:"suppliers"`
}

// seedProduct mirrors the external record layout. The variant is not
// tagged: it is told apart by which attributes are present.
type seedProduct struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       *float64     `json:"price"`
	Size        string       `json:"size"`
	Available   bool         `json:"available"`
	Ingredients []seedRecipe `json:"ingredients"`
	LastUpdated string       `json:"lastUpdated"`

	HasFilling           *bool `json:"hasFilling"`
	HasNutsToppingOption *bool `json:"hasNutsToppingOption"`
	HasCreamOnTopOption  *bool `json:"hasCreamOnTopOption"`
	HasServeOnIceOption  *bool `json:"hasServeOnIceOption"`
}

type seedRecipe struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

type seedIngredient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock struct {
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"stock"`
	Supplier    string   `json:"supplier"`
	Products    []string `json:"products"`
	LastUpdated string   `json:"lastUpdated"`
}

type seedSupplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

// DefaultSeed decodes the sample catalog bundled with the binary.
func DefaultSeed() (Seed, error) {
	return DecodeSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile decodes a seed document from path. An empty path loads the
// bundled sample catalog.
func LoadSeedFile(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeSeed(f)
}

// DecodeSeed decodes a JSON seed document. Records without lastUpdated get
// the current time.
func DecodeSeed(r io.Reader) (Seed, error) {
	var doc seedDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	now := time.Now().UTC()
	seed := Seed{
		Products:    make([]Product, 0, len(doc.Products)),
		Ingredients: make([]Ingredient, 0, len(doc.Ingredients)),
		Suppliers:   make([]Supplier, 0, len(doc.Suppliers)),
	}

	for _, raw := range doc.Products {
		p, err := raw.product(now)
		if err != nil {
			return Seed{}, err
		}
		seed.Products = append(seed.Products, p)
	}
	for _, raw := range doc.Ingredients {
		updated, err := parseOptionalTime(raw.LastUpdated, now)
		if err != nil {
			return Seed{}, fmt.Errorf("ingredient %q: %w", raw.ID, err)
		}
		seed.Ingredients = append(seed.Ingredients, Ingredient{
			ID:          raw.ID,
			Name:        raw.Name,
			Stock:       Stock{Quantity: raw.Stock.Quantity, Unit: raw.Stock.Unit},
			ProductIDs:  append([]string{}, raw.Products...),
			SupplierID:  raw.Supplier,
			LastUpdated: updated,
		})
	}
	for _, raw := range doc.Suppliers {
		seed.Suppliers = append(seed.Suppliers, Supplier(raw))
	}
	return seed, nil
}

func (raw seedProduct) product(now time.Time) (Product, error) {
	updated, err := parseOptionalTime(raw.LastUpdated, now)
	if err != nil {
		return Product{}, fmt.Errorf("product %q: %w", raw.ID, err)
	}

	p := Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Price:       raw.Price,
		Size:        raw.Size,
		Available:   raw.Available,
		LastUpdated: updated,
		Variant:     raw.variant(),
		Ingredients: make([]RecipeEntry, 0, len(raw.Ingredients)),
	}
	for _, entry := range raw.Ingredients {
		p.Ingredients = append(p.Ingredients, RecipeEntry{
			IngredientID: entry.Ingredient,
			Quantity:     entry.Quantity,
			Unit:         entry.Unit,
		})
	}
	return p, nil
}

// variant applies the ingestion rule: a record with hasFilling is a cake,
// whatever else it carries, and anything else is a beverage. Attributes of
// the variant that was not chosen are dropped.
func (raw seedProduct) variant() Variant {
	if raw.HasFilling != nil {
		return Cake{
			HasFilling:           *raw.HasFilling,
			HasNutsToppingOption: boolValue(raw.HasNutsToppingOption),
		}
	}
	return Beverage{
		HasCreamOnTopOption: boolValue(raw.HasCreamOnTopOption),
		HasServeOnIceOption: boolValue(raw.HasServeOnIceOption),
	}
}

func parseOptionalTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return datetime.Parse(s)
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
