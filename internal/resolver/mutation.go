package resolver

import (
	"context"
	"errors"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
	"github.com/llehouerou/go-graphql-catalog/types"
)

type ingredientRecipeInput struct {
	Ingredient graphql.ID
	Quantity   float64
	Unit       string
}

type addProductInput struct {
	Price                *float64
	Size                 *string
	Available            *bool
	Ingredients          *[]ingredientRecipeInput
	HasFilling           *bool
	HasNutsToppingOption *bool
	HasCreamOnTopOption  *bool
	HasServeOnIceOption  *bool
}

type addProductArgs struct {
	Name  string
	Type  string
	Input addProductInput
}

// variant builds the variant for the requested product type. Attributes of
// the other variant are rejected so a stored product never carries both.
func (in addProductInput) variant(productType string) (store.Variant, error) {
	switch productType {
	case types.ProductTypeCake:
		if in.HasCreamOnTopOption != nil || in.HasServeOnIceOption != nil {
			return nil, newError(CodeInvalidInput, nil, "cake input has beverage attributes")
		}
		return store.Cake{
			HasFilling:           deref(in.HasFilling),
			HasNutsToppingOption: deref(in.HasNutsToppingOption),
		}, nil
	case types.ProductTypeBeverage:
		if in.HasFilling != nil || in.HasNutsToppingOption != nil {
			return nil, newError(CodeInvalidInput, nil, "beverage input has cake attributes")
		}
		return store.Beverage{
			HasCreamOnTopOption: deref(in.HasCreamOnTopOption),
			HasServeOnIceOption: deref(in.HasServeOnIceOption),
		}, nil
	default:
		return nil, newError(CodeInvalidInput, nil, "unknown product type %q", productType)
	}
}

// AddProduct resolves Mutation.addProduct.
func (r *Resolver) AddProduct(ctx context.Context, args addProductArgs) (*productResolver, error) {
	variant, err := args.Input.variant(args.Type)
	if err != nil {
		return nil, err
	}

	p := store.Product{
		ID:          r.newID(),
		Name:        args.Name,
		Price:       args.Input.Price,
		Size:        deref(args.Input.Size),
		Available:   deref(args.Input.Available),
		LastUpdated: r.now().UTC(),
		Variant:     variant,
		Ingredients: []store.RecipeEntry{},
	}
	if args.Input.Ingredients != nil {
		for _, in := range *args.Input.Ingredients {
			p.Ingredients = append(p.Ingredients, store.RecipeEntry{
				IngredientID: string(in.Ingredient),
				Quantity:     in.Quantity,
				Unit:         in.Unit,
			})
		}
	}

	added, err := r.store.AddProduct(p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDuplicateID) {
			return nil, newError(CodeInvalidInput, err, "cannot add product")
		}
		r.log(ctx).Error("add product failed", zap.Error(err))
		return nil, newError(CodeInternal, err, "cannot add product")
	}

	r.log(ctx).Info("product added",
		zap.String("product_id", added.ID),
		zap.String("kind", added.Kind().String()),
	)
	r.events.publish(r.productEvent(added))
	return &productResolver{root: r, p: added}, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
