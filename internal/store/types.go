package store

import (
	"time"
)

// Kind names a product variant.
type Kind int

const (
	KindCake Kind = iota + 1
	KindBeverage
)

func (k Kind) String() string {
	switch k {
	case KindCake:
		return "Cake"
	case KindBeverage:
		return "Beverage"
	default:
		return "Unknown"
	}
}

// Variant is the variant-specific attribute set of a product. The only
// implementations are Cake and Beverage.
type Variant interface {
	Kind() Kind
	isVariant()
}

// Cake attributes.
type Cake struct {
	HasFilling           bool
	HasNutsToppingOption bool
}

func (Cake) Kind() Kind { return KindCake }
func (Cake) isVariant() {}

// Beverage attributes.
type Beverage struct {
	HasCreamOnTopOption bool
	HasServeOnIceOption bool
}

func (Beverage) Kind() Kind { return KindBeverage }
func (Beverage) isVariant() {}

// Product is a catalog item. Price is nil when the record has none.
type Product struct {
	ID          string
	Name        string
	Price       *float64
	Size        string
	Available   bool
	Ingredients []RecipeEntry
	LastUpdated time.Time
	Variant     Variant
}

// Kind returns the variant kind of the product.
func (p Product) Kind() Kind {
	if p.Variant == nil {
		return 0
	}
	return p.Variant.Kind()
}

// clone copies p so the caller can't reach the stored recipe slice.
func (p Product) clone() Product {
	if p.Price != nil {
		price := *p.Price
		p.Price = &price
	}
	if p.Ingredients != nil {
		entries := make([]RecipeEntry, len(p.Ingredients))
		copy(entries, p.Ingredients)
		p.Ingredients = entries
	}
	return p
}

// RecipeEntry references an ingredient from a product recipe.
type RecipeEntry struct {
	IngredientID string
	Quantity     float64
	Unit         string
}

// ResolvedRecipe is a recipe entry with its ingredient looked up.
// Ingredient is nil when the reference did not resolve.
type ResolvedRecipe struct {
	RecipeEntry
	Ingredient *Ingredient
}

// Stock is the quantity of an ingredient on hand.
type Stock struct {
	Quantity float64
	Unit     string
}

// Ingredient used by one or more products.
type Ingredient struct {
	ID          string
	Name        string
	Stock       Stock
	ProductIDs  []string
	SupplierID  string
	LastUpdated time.Time
}

func (i Ingredient) clone() Ingredient {
	if i.ProductIDs != nil {
		i.ProductIDs = append([]string(nil), i.ProductIDs...)
	}
	return i
}

// Supplier of ingredients.
type Supplier struct {
	ID            string
	Name          string
	Address       string
	ContactNumber string
	Email         string
}
