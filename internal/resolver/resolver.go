// Package resolver binds the catalog store and the products pipeline to the
// GraphQL schema.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-catalog/internal/observability"
	"github.com/llehouerou/go-graphql-catalog/internal/pipeline"
	"github.com/llehouerou/go-graphql-catalog/internal/store"
	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
)

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	store  *store.Store
	events *broker
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used when no request logger is on the context.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the clock stamping added products.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the id generator for added products.
func WithIDGenerator(newID func() string) Option {
	return func(r *Resolver) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// New returns a root resolver reading from s.
func New(s *store.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  s,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.events = newBroker(r.logger.Named("events"))
	return r
}

func (r *Resolver) log(ctx context.Context) *zap.Logger {
	if logger, ok := observability.LoggerFrom(ctx); ok {
		return logger
	}
	return r.logger
}

func (r *Resolver) products(ps []store.Product) []*productResolver {
	out := make([]*productResolver, len(ps))
	for i, p := range ps {
		out[i] = &productResolver{root: r, p: p}
	}
	return out
}

// AllProducts resolves Query.allProducts.
func (r *Resolver) AllProducts() *[]*productResolver {
	out := r.products(r.store.Products())
	return &out
}

// AllIngredients resolves Query.allIngredients.
func (r *Resolver) AllIngredients() *[]*ingredientResolver {
	ings := r.store.Ingredients()
	out := make([]*ingredientResolver, len(ings))
	for i, ing := range ings {
		out[i] = &ingredientResolver{root: r, ing: ing}
	}
	return &out
}

// AllSuppliers resolves Query.allSuppliers.
func (r *Resolver) AllSuppliers() []*supplierResolver {
	sups := r.store.Suppliers()
	out := make([]*supplierResolver, len(sups))
	for i, sup := range sups {
		out[i] = &supplierResolver{sup: sup}
	}
	return out
}

type productsFilterInput struct {
	Available      bool
	MinPrice       *float64
	MaxPrice       *float64
	UpdatedSince   *datetime.Input
	SortBy         string
	Sort           string
	ResultsPerPage int32
	Page           int32
}

func (in *productsFilterInput) filter() (*pipeline.Filter, error) {
	if in == nil {
		return nil, nil
	}
	f := &pipeline.Filter{
		Available:      in.Available,
		MinPrice:       in.MinPrice,
		MaxPrice:       in.MaxPrice,
		SortBy:         in.SortBy,
		Sort:           pipeline.Direction(in.Sort),
		ResultsPerPage: int(in.ResultsPerPage),
		Page:           int(in.Page),
	}
	if in.UpdatedSince != nil {
		since, err := in.UpdatedSince.Time()
		if err != nil {
			return nil, newError(CodeInvalidInput, err, "invalid updatedSince")
		}
		f.UpdatedSince = &since
	}
	return f, nil
}

// Products resolves Query.products. Failures stay on this field: the list
// is nullable so sibling fields still resolve.
func (r *Resolver) Products(ctx context.Context, args struct{ Input *productsFilterInput }) (*[]*productResolver, error) {
	f, err := args.Input.filter()
	if err != nil {
		return nil, err
	}
	result, err := pipeline.Run(r.store.Products(), f)
	if err != nil {
		var keyErr *pipeline.UnknownSortKeyError
		if errors.As(err, &keyErr) {
			return nil, newError(CodeUnknownSortKey, err, "cannot sort products")
		}
		r.log(ctx).Error("products query failed", zap.Error(err))
		return nil, newError(CodeInternal, err, "products query failed")
	}
	out := r.products(result)
	return &out, nil
}

// Product resolves Query.product. An unknown id resolves to null.
func (r *Resolver) Product(args struct{ ID graphql.ID }) *productResolver {
	p, err := r.store.Product(string(args.ID))
	if err != nil {
		return nil
	}
	return &productResolver{root: r, p: p}
}

// Ingredient resolves Query.ingredient. An unknown id resolves to null.
func (r *Resolver) Ingredient(args struct{ ID graphql.ID }) *ingredientResolver {
	ing, err := r.store.Ingredient(string(args.ID))
	if err != nil {
		return nil
	}
	return &ingredientResolver{root: r, ing: ing}
}
