package store

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func price(v float64) *float64 { return &v }

func testSeed() Seed {
	return Seed{
		Suppliers: []Supplier{
			{ID: "s1", Name: "Milk Supplier"},
		},
		Ingredients: []Ingredient{
			{ID: "i1", Name: "Milk", SupplierID: "s1", ProductIDs: []string{"p2", "p1"}},
			{ID: "i2", Name: "Flour"},
			{ID: "i3", Name: "Sugar", SupplierID: "gone"},
		},
		Products: []Product{
			{
				ID: "p1", Name: "Cake", Price: price(3), Available: true,
				Ingredients: []RecipeEntry{
					{IngredientID: "i1", Quantity: 1, Unit: "LITRES"},
					{IngredientID: "missing", Quantity: 2, Unit: "UNITS"},
					{IngredientID: "i2", Quantity: 3, Unit: "KILOGRAMS"},
				},
				Variant: Cake{HasFilling: true},
			},
			{ID: "p2", Name: "Latte", Price: price(7), Available: true, Variant: Beverage{}},
			{ID: "p3", Name: "Tea", Variant: Beverage{HasServeOnIceOption: true}},
		},
	}
}

func mustStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(testSeed())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_duplicateIDs(t *testing.T) {
	seed := testSeed()
	seed.Products = append(seed.Products, Product{ID: "p1", Variant: Cake{}})
	if _, err := New(seed); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got error %v, want ErrDuplicateID", err)
	}

	seed = testSeed()
	seed.Products = append(seed.Products, Product{ID: "p9"})
	if _, err := New(seed); !errors.Is(err, ErrMissingVariant) {
		t.Errorf("got error %v, want ErrMissingVariant", err)
	}
}

func TestStore_ProductsReturnsCopies(t *testing.T) {
	s := mustStore(t)

	got := s.Products()
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}
	got[0].Name = "changed"
	*got[0].Price = 99
	got[0].Ingredients[0].IngredientID = "changed"

	again, err := s.Product("p1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "Cake" || *again.Price != 3 || again.Ingredients[0].IngredientID != "i1" {
		t.Errorf("stored product was mutated through a copy: %+v", again)
	}
}

func TestStore_Lookups(t *testing.T) {
	s := mustStore(t)

	if _, err := s.Product("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Product: got %v, want ErrNotFound", err)
	}
	if _, err := s.Ingredient("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Ingredient: got %v, want ErrNotFound", err)
	}
	if _, err := s.Supplier("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Supplier: got %v, want ErrNotFound", err)
	}
	ing, err := s.Ingredient("i1")
	if err != nil || ing.Name != "Milk" {
		t.Errorf("Ingredient(i1) = %+v, %v", ing, err)
	}
	if got := len(s.Suppliers()); got != 1 {
		t.Errorf("got %d suppliers, want 1", got)
	}
}

func TestStore_ExpandIngredients(t *testing.T) {
	s := mustStore(t)
	p, err := s.Product("p1")
	if err != nil {
		t.Fatal(err)
	}

	first := s.ExpandIngredients(p)
	second := s.ExpandIngredients(p)

	if len(first) != 3 {
		t.Fatalf("got %d entries, want 3", len(first))
	}
	wantIDs := []string{"i1", "missing", "i2"}
	for i, entry := range first {
		if entry.IngredientID != wantIDs[i] {
			t.Errorf("entry %d: got id %q, want %q", i, entry.IngredientID, wantIDs[i])
		}
	}
	if first[0].Ingredient == nil || first[0].Ingredient.Name != "Milk" {
		t.Errorf("entry 0 not resolved: %+v", first[0])
	}
	if first[1].Ingredient != nil {
		t.Errorf("entry 1 should stay unresolved, got %+v", first[1].Ingredient)
	}
	if first[1].Quantity != 2 || first[1].Unit != "UNITS" {
		t.Errorf("entry 1 lost its recipe metadata: %+v", first[1])
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expansions differ:\n%+v\n%+v", first, second)
	}
	if first[0].Ingredient == second[0].Ingredient {
		t.Error("expansions share an ingredient record")
	}
	first[0].Quantity = 42
	first[0].Ingredient.Name = "changed"
	if second[0].Quantity != 1 || second[0].Ingredient.Name != "Milk" {
		t.Error("expansions share memory")
	}

	stored, _ := s.Product("p1")
	if !reflect.DeepEqual(stored.Ingredients, p.Ingredients) {
		t.Errorf("stored recipe changed: %+v", stored.Ingredients)
	}
	ing, _ := s.Ingredient("i1")
	if ing.Name != "Milk" {
		t.Errorf("stored ingredient changed: %+v", ing)
	}

	if got := s.ExpandIngredients(Product{ID: "x"}); got != nil {
		t.Errorf("got %v, want nil for a product without recipe", got)
	}
}

func TestStore_ProductsFor(t *testing.T) {
	s := mustStore(t)
	ing, _ := s.Ingredient("i1")

	got := s.ProductsFor(ing)
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	// store order, not the order listed on the ingredient
	if want := []string{"p1", "p2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("got %v, want %v", ids, want)
	}

	flour, _ := s.Ingredient("i2")
	if got := s.ProductsFor(flour); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestStore_SupplierFor(t *testing.T) {
	s := mustStore(t)

	milk, _ := s.Ingredient("i1")
	if sup, ok := s.SupplierFor(milk); !ok || sup.ID != "s1" {
		t.Errorf("SupplierFor(milk) = %+v, %v", sup, ok)
	}
	flour, _ := s.Ingredient("i2")
	if _, ok := s.SupplierFor(flour); ok {
		t.Error("SupplierFor(flour) should be absent")
	}
	sugar, _ := s.Ingredient("i3")
	if _, ok := s.SupplierFor(sugar); ok {
		t.Error("SupplierFor(sugar) should be absent for an unknown supplier")
	}
}

func TestStore_AddProduct(t *testing.T) {
	s := mustStore(t)

	added, err := s.AddProduct(Product{
		ID:          "p4",
		Name:        "Scone",
		Ingredients: []RecipeEntry{{IngredientID: "i2", Quantity: 1}},
		Variant:     Cake{},
		LastUpdated: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if added.ID != "p4" {
		t.Errorf("got %q, want p4", added.ID)
	}
	all := s.Products()
	if got := all[len(all)-1].ID; got != "p4" {
		t.Errorf("last product = %q, want p4", got)
	}
	flour, _ := s.Ingredient("i2")
	if !reflect.DeepEqual(flour.ProductIDs, []string{"p4"}) {
		t.Errorf("flour products = %v", flour.ProductIDs)
	}

	if _, err := s.AddProduct(Product{ID: "p4", Variant: Cake{}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got %v, want ErrDuplicateID", err)
	}
	_, err = s.AddProduct(Product{ID: "p5", Variant: Cake{}, Ingredients: []RecipeEntry{{IngredientID: "nope"}}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := s.AddProduct(Product{ID: "p6"}); !errors.Is(err, ErrMissingVariant) {
		t.Errorf("got %v, want ErrMissingVariant", err)
	}
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := mustStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = s.AddProduct(Product{
				ID:          "c" + string(rune('a'+i)),
				Variant:     Beverage{},
				Ingredients: []RecipeEntry{{IngredientID: "i1"}},
			})
		}(i)
		go func() {
			defer wg.Done()
			for _, p := range s.Products() {
				_ = s.ExpandIngredients(p)
			}
		}()
	}
	wg.Wait()

	if got := len(s.Products()); got != 11 {
		t.Errorf("got %d products, want 11", got)
	}
}

func TestDecodeSeed_variantInference(t *testing.T) {
	doc := `{"products": [
		{"id": "a", "name": "A", "hasFilling": false, "hasNutsToppingOption": true},
		{"id": "b", "name": "B", "hasCreamOnTopOption": true, "hasServeOnIceOption": false},
		{"id": "c", "name": "C", "price": 4.5, "available": true}
	]}`
	seed, err := DecodeSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := seed.Products[0].Variant.(Cake); !ok || got.HasFilling || !got.HasNutsToppingOption {
		t.Errorf("product a: got %#v, want Cake", seed.Products[0].Variant)
	}
	if got, ok := seed.Products[1].Variant.(Beverage); !ok || !got.HasCreamOnTopOption {
		t.Errorf("product b: got %#v, want Beverage", seed.Products[1].Variant)
	}
	if _, ok := seed.Products[2].Variant.(Beverage); !ok {
		t.Errorf("product c: got %#v, want Beverage", seed.Products[2].Variant)
	}
	if seed.Products[0].Price != nil {
		t.Errorf("product a: price should be absent")
	}
	if p := seed.Products[2].Price; p == nil || *p != 4.5 {
		t.Errorf("product c: got price %v, want 4.5", p)
	}
	if seed.Products[0].LastUpdated.IsZero() {
		t.Error("missing lastUpdated should default to the load time")
	}
}

func TestDecodeSeed_hasFillingWinsOverBeverageAttributes(t *testing.T) {
	doc := `{"products": [
		{"id": "x", "name": "X", "hasFilling": true, "hasNutsToppingOption": false, "hasCreamOnTopOption": true},
		{"id": "y", "name": "Y", "hasFilling": false, "hasServeOnIceOption": true}
	]}`
	seed, err := DecodeSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("got error: %v, want: nil", err)
	}

	for _, p := range seed.Products {
		if p.Kind() != KindCake {
			t.Errorf("product %s: got kind %v, want Cake", p.ID, p.Kind())
		}
	}
	if got := seed.Products[0].Variant.(Cake); !got.HasFilling || got.HasNutsToppingOption {
		t.Errorf("product x: got %#v", got)
	}
}

func TestDecodeSeed_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"bad time", `{"products": [{"id": "x", "lastUpdated": "soon"}]}`, nil},
		{"bad json", `{"products": [`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSeed(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("got error: nil, want: non-nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(seed)
	if err != nil {
		t.Fatal(err)
	}

	walnut, err := s.Product("6961ca64-78f3-41d4-bc3b-a63550754bd8")
	if err != nil {
		t.Fatal(err)
	}
	if walnut.Kind() != KindCake {
		t.Errorf("Walnut Bomb kind = %v, want Cake", walnut.Kind())
	}
	cappuccino, err := s.Product("e4e33d0b-1355-4735-9505-749e3fdf8a16")
	if err != nil {
		t.Fatal(err)
	}
	if cappuccino.Kind() != KindBeverage {
		t.Errorf("Cappuccino Star kind = %v, want Beverage", cappuccino.Kind())
	}

	for _, p := range s.Products() {
		for _, entry := range s.ExpandIngredients(p) {
			if entry.Ingredient == nil {
				t.Errorf("product %s references unknown ingredient %s", p.Name, entry.IngredientID)
			}
		}
	}
}
