package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
	"github.com/llehouerou/go-graphql-catalog/types"
)

// ID is the GraphQL ID scalar.
type ID string

// ProductType is the kind of product addProduct creates.
type ProductType string

const (
	ProductTypeCake     ProductType = types.ProductTypeCake
	ProductTypeBeverage ProductType = types.ProductTypeBeverage
)

// ProductFields are the fields every product carries.
type ProductFields struct {
	ID          string
	Name        string
	Price       *float64
	Size        *string
	Available   bool
	LastUpdated datetime.Datetime
	Ingredients []IngredientRecipe
}

// Cake is the Cake member of the Product union.
type Cake struct {
	ProductFields
	HasFilling           bool
	HasNutsToppingOption bool
}

// Beverage is the Beverage member of the Product union.
type Beverage struct {
	ProductFields
	HasCreamOnTopOption bool
	HasServeOnIceOption bool
}

// Product is a product as the server returns it. The member named by
// Typename is filled in; the other one is left zero.
type Product struct {
	Typename string   `graphql:"__typename"`
	Cake     Cake     `graphql:"... on Cake"`
	Beverage Beverage `graphql:"... on Beverage"`
}

// IsCake reports whether p is a cake.
func (p Product) IsCake() bool { return p.Typename == types.CakeTypename }

// IsBeverage reports whether p is a beverage.
func (p Product) IsBeverage() bool { return p.Typename == types.BeverageTypename }

// Fields returns the fields shared by both members.
func (p Product) Fields() ProductFields {
	if p.IsCake() {
		return p.Cake.ProductFields
	}
	return p.Beverage.ProductFields
}

func (p Product) check() error {
	if !p.IsCake() && !p.IsBeverage() {
		return fmt.Errorf("unknown product type %q", p.Typename)
	}
	return nil
}

func checkProducts(products []Product) error {
	for _, p := range products {
		if err := p.check(); err != nil {
			return err
		}
	}
	return nil
}

// IngredientRecipe is one recipe entry of a product.
type IngredientRecipe struct {
	IngredientID string `graphql:"ingredientId"`
	Quantity     float64
	Unit         string
}

// Stock is the quantity of an ingredient on hand.
type Stock struct {
	Quantity float64
	Unit     string
}

// Supplier supplies ingredients.
type Supplier struct {
	ID            string
	Name          string
	Address       string
	ContactNumber string
	Email         string
}

// ProductRef is a product listed by an ingredient.
type ProductRef struct {
	Typename string `graphql:"__typename"`
	Cake     struct {
		ID string
	} `graphql:"... on Cake"`
	Beverage struct {
		ID string
	} `graphql:"... on Beverage"`
}

// ID returns the id of the referenced product.
func (r ProductRef) ID() string {
	if r.Typename == types.CakeTypename {
		return r.Cake.ID
	}
	return r.Beverage.ID
}

// Ingredient is an ingredient with the products that use it.
type Ingredient struct {
	ID          string
	Name        string
	Stock       Stock
	Supplier    *Supplier
	LastUpdated datetime.Datetime
	Products    []ProductRef
}

// ProductIDs lists the ids of the products using the ingredient, in catalog
// order.
func (ing Ingredient) ProductIDs() []string {
	ids := make([]string, len(ing.Products))
	for i, p := range ing.Products {
		ids[i] = p.ID()
	}
	return ids
}

// ProductsFilter is the ProductsFilter input of the products query.
type ProductsFilter struct {
	Available      bool       `json:"available"`
	MinPrice       *float64   `json:"minPrice,omitempty"`
	MaxPrice       *float64   `json:"maxPrice,omitempty"`
	UpdatedSince   *time.Time `json:"updatedSince,omitempty"`
	SortBy         string     `json:"sortBy"`
	Sort           string     `json:"sort"`
	ResultsPerPage int        `json:"resultsPerPage"`
	Page           int        `json:"page"`
}

// IngredientRecipeInput references an ingredient in AddProductInput.
type IngredientRecipeInput struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

// AddProductInput is the optional part of an addProduct mutation. Only the
// attributes of the requested product type may be set.
type AddProductInput struct {
	Price                *float64                `json:"price,omitempty"`
	Size                 *string                 `json:"size,omitempty"`
	Available            *bool                   `json:"available,omitempty"`
	Ingredients          []IngredientRecipeInput `json:"ingredients,omitempty"`
	HasFilling           *bool                   `json:"hasFilling,omitempty"`
	HasNutsToppingOption *bool                   `json:"hasNutsToppingOption,omitempty"`
	HasCreamOnTopOption  *bool                   `json:"hasCreamOnTopOption,omitempty"`
	HasServeOnIceOption  *bool                   `json:"hasServeOnIceOption,omitempty"`
}

// AllProducts lists every product in catalog order.
func (c *Client) AllProducts(ctx context.Context) ([]Product, error) {
	var q struct {
		AllProducts []Product
	}
	if err := c.Query(ctx, &q, nil, OperationName("AllProducts")); err != nil {
		return nil, err
	}
	if err := checkProducts(q.AllProducts); err != nil {
		return nil, err
	}
	return q.AllProducts, nil
}

// Products runs the filter, sort and pagination pipeline on the server. A nil
// filter returns every product unfiltered. A rejected filter comes back as
// Errors with CodeUnknownSortKey or CodeInvalidInput.
func (c *Client) Products(ctx context.Context, filter *ProductsFilter) ([]Product, error) {
	var q struct {
		Products []Product `graphql:"products(input: $input)"`
	}
	variables := map[string]any{"input": filter}
	if err := c.Query(ctx, &q, variables, OperationName("Products")); err != nil {
		return nil, err
	}
	if err := checkProducts(q.Products); err != nil {
		return nil, err
	}
	return q.Products, nil
}

// Product fetches a product by id. It returns nil when the id is unknown.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var q struct {
		Product *Product `graphql:"product(id: $id)"`
	}
	variables := map[string]any{"id": ID(id)}
	if err := c.Query(ctx, &q, variables, OperationName("Product")); err != nil {
		return nil, err
	}
	if q.Product == nil {
		return nil, nil
	}
	if err := q.Product.check(); err != nil {
		return nil, err
	}
	return q.Product, nil
}

// AllIngredients lists every ingredient with its supplier and products.
func (c *Client) AllIngredients(ctx context.Context) ([]Ingredient, error) {
	var q struct {
		AllIngredients []Ingredient
	}
	if err := c.Query(ctx, &q, nil, OperationName("AllIngredients")); err != nil {
		return nil, err
	}
	return q.AllIngredients, nil
}

// AllSuppliers lists every supplier.
func (c *Client) AllSuppliers(ctx context.Context) ([]Supplier, error) {
	var q struct {
		AllSuppliers []Supplier
	}
	if err := c.Query(ctx, &q, nil, OperationName("AllSuppliers")); err != nil {
		return nil, err
	}
	return q.AllSuppliers, nil
}

// AddProduct creates a product of productType named name.
func (c *Client) AddProduct(ctx context.Context, name string, productType ProductType, input AddProductInput) (Product, error) {
	var m struct {
		AddProduct Product `graphql:"addProduct(name: $name, type: $type, input: $input)"`
	}
	variables := map[string]any{
		"name":  name,
		"type":  productType,
		"input": input,
	}
	if err := c.Mutate(ctx, &m, variables, OperationName("AddProduct")); err != nil {
		return Product{}, err
	}
	if err := m.AddProduct.check(); err != nil {
		return Product{}, err
	}
	return m.AddProduct, nil
}
