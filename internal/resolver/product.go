package resolver

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
)

// productResolver resolves the Product union and the ProductInterface
// interface. The concrete type comes from the variant tag set when the
// product entered the store.
type productResolver struct {
	root *Resolver
	p    store.Product
}

func (r *productResolver) ToCake() (*cakeResolver, bool) {
	c, ok := r.p.Variant.(store.Cake)
	if !ok {
		return nil, false
	}
	return &cakeResolver{productResolver: r, cake: c}, true
}

func (r *productResolver) ToBeverage() (*beverageResolver, bool) {
	b, ok := r.p.Variant.(store.Beverage)
	if !ok {
		return nil, false
	}
	return &beverageResolver{productResolver: r, beverage: b}, true
}

func (r *productResolver) ID() graphql.ID {
	return graphql.ID(r.p.ID)
}

func (r *productResolver) Name() string {
	return r.p.Name
}

func (r *productResolver) Price() *float64 {
	return r.p.Price
}

func (r *productResolver) Size() *string {
	if r.p.Size == "" {
		return nil
	}
	size := r.p.Size
	return &size
}

func (r *productResolver) Available() bool {
	return r.p.Available
}

func (r *productResolver) LastUpdated() datetime.Datetime {
	return datetime.New(r.p.LastUpdated)
}

// Ingredients expands the recipe entries with their ingredient records.
func (r *productResolver) Ingredients() *[]*ingredientRecipeResolver {
	if r.p.Ingredients == nil {
		return nil
	}
	expanded := r.root.store.ExpandIngredients(r.p)
	out := make([]*ingredientRecipeResolver, len(expanded))
	for i, entry := range expanded {
		out[i] = &ingredientRecipeResolver{root: r.root, entry: entry}
	}
	return &out
}

type cakeResolver struct {
	*productResolver
	cake store.Cake
}

func (r *cakeResolver) HasFilling() bool {
	return r.cake.HasFilling
}

func (r *cakeResolver) HasNutsToppingOption() bool {
	return r.cake.HasNutsToppingOption
}

type beverageResolver struct {
	*productResolver
	beverage store.Beverage
}

func (r *beverageResolver) HasCreamOnTopOption() bool {
	return r.beverage.HasCreamOnTopOption
}

func (r *beverageResolver) HasServeOnIceOption() bool {
	return r.beverage.HasServeOnIceOption
}

type ingredientRecipeResolver struct {
	root  *Resolver
	entry store.ResolvedRecipe
}

func (r *ingredientRecipeResolver) IngredientID() graphql.ID {
	return graphql.ID(r.entry.IngredientID)
}

// Ingredient is null when the referenced ingredient is not in the store.
func (r *ingredientRecipeResolver) Ingredient() *ingredientResolver {
	if r.entry.Ingredient == nil {
		return nil
	}
	return &ingredientResolver{root: r.root, ing: *r.entry.Ingredient}
}

func (r *ingredientRecipeResolver) Quantity() float64 {
	return r.entry.Quantity
}

func (r *ingredientRecipeResolver) Unit() string {
	return r.entry.Unit
}
