package resolver

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
)

type ingredientResolver struct {
	root *Resolver
	ing  store.Ingredient
}

func (r *ingredientResolver) ID() graphql.ID {
	return graphql.ID(r.ing.ID)
}

func (r *ingredientResolver) Name() string {
	return r.ing.Name
}

func (r *ingredientResolver) Stock() *stockResolver {
	return &stockResolver{stock: r.ing.Stock}
}

// Products lists the products that use this ingredient, in catalog order.
func (r *ingredientResolver) Products() []*productResolver {
	return r.root.products(r.root.store.ProductsFor(r.ing))
}

// Supplier is null when the ingredient has no supplier or an unknown one.
func (r *ingredientResolver) Supplier() *supplierResolver {
	sup, ok := r.root.store.SupplierFor(r.ing)
	if !ok {
		return nil
	}
	return &supplierResolver{sup: sup}
}

func (r *ingredientResolver) LastUpdated() datetime.Datetime {
	return datetime.New(r.ing.LastUpdated)
}

type stockResolver struct {
	stock store.Stock
}

func (r *stockResolver) Quantity() float64 {
	return r.stock.Quantity
}

func (r *stockResolver) Unit() string {
	return r.stock.Unit
}

type supplierResolver struct {
	sup store.Supplier
}

func (r *supplierResolver) ID() graphql.ID {
	return graphql.ID(r.sup.ID)
}

func (r *supplierResolver) Name() string {
	return r.sup.Name
}

func (r *supplierResolver) Address() string {
	return r.sup.Address
}

func (r *supplierResolver) ContactNumber() string {
	return r.sup.ContactNumber
}

func (r *supplierResolver) Email() string {
	return r.sup.Email
}
