package catalog

import (
	stdjson "encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/llehouerou/go-graphql-catalog/pkg/datetime"
)

const (
	cakeSelection     = "... on Cake{id,name,price,size,available,lastUpdated,ingredients{ingredientId,quantity,unit},hasFilling,hasNutsToppingOption}"
	beverageSelection = "... on Beverage{id,name,price,size,available,lastUpdated,ingredients{ingredientId,quantity,unit},hasCreamOnTopOption,hasServeOnIceOption}"
	productSelection  = "{__typename," + cakeSelection + "," + beverageSelection + "}"
)

func TestConstructQuery(t *testing.T) {
	tests := []struct {
		name      string
		inV       any
		inVars    map[string]any
		inOptions []Option
		want      string
	}{
		{
			name: "plain fields",
			inV: struct {
				AllSuppliers []Supplier
			}{},
			want: `{allSuppliers{id,name,address,contactNumber,email}}`,
		},
		{
			name: "union fragments",
			inV: struct {
				AllProducts []Product
			}{},
			want: `{allProducts` + productSelection + `}`,
		},
		{
			name: "nullable variable",
			inV: struct {
				Products []Product `graphql:"products(input: $input)"`
			}{},
			inVars:    map[string]any{"input": (*ProductsFilter)(nil)},
			inOptions: []Option{OperationName("Products")},
			want:      `query Products($input:ProductsFilter){products(input: $input)` + productSelection + `}`,
		},
		{
			name: "aliases",
			inV: struct {
				First struct {
					Typename string `graphql:"__typename"`
				} `graphql:"first: product(id: $a)"`
				Second struct {
					Typename string `graphql:"__typename"`
				} `graphql:"second: product(id: $b)"`
			}{},
			inVars: map[string]any{"a": ID("1"), "b": ID("2")},
			want:   `query($a:ID!$b:ID!){first: product(id: $a){__typename},second: product(id: $b){__typename}}`,
		},
		{
			name: "ingredient with nested union",
			inV: &struct {
				AllIngredients []Ingredient
			}{},
			want: `{allIngredients{id,name,stock{quantity,unit},supplier{id,name,address,contactNumber,email},lastUpdated,products{__typename,... on Cake{id},... on Beverage{id}}}}`,
		},
		{
			name: "skipped and scalar fields",
			inV: struct {
				Supplier struct {
					ID       string
					Internal string `graphql:"-"`
					Raw      stdjson.RawMessage
					Meta     map[string]any `graphql:"meta" scalar:"true"`
					hidden   string
				}
			}{},
			want: `{supplier{id,raw,meta}}`,
		},
		{
			name: "slice element from instance",
			inV: struct {
				Stamps []struct {
					At datetime.Datetime
				}
			}{Stamps: []struct{ At datetime.Datetime }{{At: datetime.New(time.Unix(0, 0))}}},
			want: `{stamps{at}}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ConstructQuery(tc.inV, tc.inVars, tc.inOptions...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("\ngot:  %q\nwant: %q\n", got, tc.want)
			}
		})
	}
}

func TestConstructMutation(t *testing.T) {
	var m struct {
		AddProduct Product `graphql:"addProduct(name: $name, type: $type, input: $input)"`
	}
	got, err := ConstructMutation(&m, map[string]any{
		"name":  "Flat White",
		"type":  ProductTypeBeverage,
		"input": AddProductInput{},
	}, OperationName("AddProduct"))
	if err != nil {
		t.Fatal(err)
	}
	want := `mutation AddProduct($input:AddProductInput!$name:String!$type:ProductType!){addProduct(name: $name, type: $type, input: $input)` + productSelection + `}`
	if got != want {
		t.Errorf("\ngot:  %q\nwant: %q\n", got, want)
	}
}

func TestConstructSubscription(t *testing.T) {
	var s struct {
		ProductAdded Product
	}
	got, err := ConstructSubscription(&s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := `subscription{productAdded` + productSelection + `}`; got != want {
		t.Errorf("\ngot:  %q\nwant: %q\n", got, want)
	}
}

func TestConstructQuery_errors(t *testing.T) {
	tests := []struct {
		name   string
		inV    any
		inVars map[string]any
		want   string
	}{
		{"nil selection", nil, nil, "nil value"},
		{"untyped nil variable", struct{ ID string }{}, map[string]any{"id": nil}, "$id"},
		{"map field", struct{ Meta map[string]any }{}, nil, "Meta"},
		{"anonymous variable type", struct{ ID string }{}, map[string]any{"in": struct{ A int }{}}, "no GraphQL type name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ConstructQuery(tc.inV, tc.inVars)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("got %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestQueryArguments(t *testing.T) {
	tests := []struct {
		in   map[string]any
		want string
	}{
		{map[string]any{"id": ID("1")}, "$id:ID!"},
		{map[string]any{"name": "x", "page": 2, "price": 3.5, "available": true}, "$available:Boolean!$name:String!$page:Int!$price:Float!"},
		{map[string]any{"minPrice": (*float64)(nil)}, "$minPrice:Float"},
		{map[string]any{"ids": []ID{"a"}}, "$ids:[ID!]!"},
		{map[string]any{"ids": &[]*ID{}}, "$ids:[ID]"},
		{map[string]any{"input": &ProductsFilter{}}, "$input:ProductsFilter"},
		{map[string]any{"type": ProductTypeCake}, "$type:ProductType!"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			got, err := queryArguments(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
