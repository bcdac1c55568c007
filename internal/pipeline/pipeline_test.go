package pipeline

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

func price(v float64) *float64 { return &v }

func ids(products []store.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestRun_scenario(t *testing.T) {
	products := []store.Product{
		{ID: "1", Available: true, Price: price(3), Variant: store.Cake{}},
		{ID: "2", Available: true, Price: price(7), Variant: store.Cake{}},
		{ID: "3", Available: false, Price: price(5), Variant: store.Cake{}},
	}
	got, err := Run(products, &Filter{
		Available:      true,
		SortBy:         "price",
		Sort:           Descending,
		ResultsPerPage: 10,
		Page:           1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2", "1"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestRun_nilFilterReturnsEverything(t *testing.T) {
	products := []store.Product{
		{ID: "b", Available: false},
		{ID: "a", Available: true},
	}
	got, err := Run(products, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b", "a"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
	got[0].ID = "changed"
	if products[0].ID != "b" {
		t.Error("result aliases the input slice")
	}
}

func TestRun_availability(t *testing.T) {
	products := []store.Product{
		{ID: "1", Available: true},
		{ID: "2", Available: false},
		{ID: "3", Available: true},
		{ID: "4", Available: false},
	}
	tests := []struct {
		available bool
		want      []string
	}{
		{true, []string{"1", "3"}},
		{false, []string{"2", "4"}},
	}
	for _, tt := range tests {
		got, err := Run(products, &Filter{Available: tt.available, SortBy: "id", ResultsPerPage: 10, Page: 1})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ids(got), tt.want) {
			t.Errorf("available=%v: got %v, want %v", tt.available, ids(got), tt.want)
		}
		for _, p := range got {
			if p.Available != tt.available {
				t.Errorf("available=%v: product %s has available=%v", tt.available, p.ID, p.Available)
			}
		}
	}
}

func TestRun_priceBounds(t *testing.T) {
	products := []store.Product{
		{ID: "1", Available: true, Price: price(2)},
		{ID: "2", Available: true, Price: price(5)},
		{ID: "3", Available: true, Price: price(8)},
		{ID: "4", Available: true, Price: price(11)},
		{ID: "5", Available: true},
	}
	tests := []struct {
		name     string
		min, max *float64
		want     []string
	}{
		{"no bounds", nil, nil, []string{"5", "1", "2", "3", "4"}},
		{"min inclusive", price(5), nil, []string{"2", "3", "4"}},
		{"max inclusive", nil, price(8), []string{"1", "2", "3"}},
		{"both", price(5), price(8), []string{"2", "3"}},
		{"empty range", price(9), price(10), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(products, &Filter{
				Available: true, MinPrice: tt.min, MaxPrice: tt.max,
				SortBy: "price", Sort: Ascending, ResultsPerPage: 10, Page: 1,
			})
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestRun_updatedSince(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }
	products := []store.Product{
		{ID: "1", Available: true, LastUpdated: day(1)},
		{ID: "2", Available: true, LastUpdated: day(5)},
		{ID: "3", Available: true, LastUpdated: day(9)},
	}
	since := day(5)
	got, err := Run(products, &Filter{Available: true, UpdatedSince: &since, SortBy: "lastUpdated", Sort: Descending, ResultsPerPage: 5, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"3", "2"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestRun_sortIsStableAndDirectional(t *testing.T) {
	products := []store.Product{
		{ID: "a", Available: true, Price: price(2)},
		{ID: "b", Available: true, Price: price(1)},
		{ID: "c", Available: true, Price: price(2)},
		{ID: "d", Available: true},
		{ID: "e", Available: true, Price: price(1)},
	}

	asc, err := Run(products, &Filter{Available: true, SortBy: "price", Sort: Ascending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"d", "b", "e", "a", "c"}; !reflect.DeepEqual(ids(asc), want) {
		t.Errorf("ascending: got %v, want %v", ids(asc), want)
	}

	desc, err := Run(products, &Filter{Available: true, SortBy: "price", Sort: Descending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "c", "b", "e", "d"}; !reflect.DeepEqual(ids(desc), want) {
		t.Errorf("descending: got %v, want %v", ids(desc), want)
	}
}

func TestRun_variantKeysDefaultToZero(t *testing.T) {
	products := []store.Product{
		{ID: "cake-filled", Available: true, Variant: store.Cake{HasFilling: true}},
		{ID: "drink", Available: true, Variant: store.Beverage{HasServeOnIceOption: true}},
		{ID: "cake-plain", Available: true, Variant: store.Cake{}},
	}

	got, err := Run(products, &Filter{Available: true, SortBy: "hasFilling", Sort: Descending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"cake-filled", "drink", "cake-plain"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}

	got, err = Run(products, &Filter{Available: true, SortBy: "hasServeOnIceOption", Sort: Ascending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"cake-filled", "cake-plain", "drink"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestRun_sortByName(t *testing.T) {
	products := []store.Product{
		{ID: "1", Name: "Tea", Available: true},
		{ID: "2", Name: "Cake", Available: true},
		{ID: "3", Name: "Latte", Available: true},
	}
	got, err := Run(products, &Filter{Available: true, SortBy: "name", ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2", "3", "1"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestRun_absentTextKeySortsFirst(t *testing.T) {
	products := []store.Product{
		{ID: "small", Available: true, Size: "SMALL"},
		{ID: "none", Available: true},
		{ID: "big", Available: true, Size: "BIG"},
	}
	asc, err := Run(products, &Filter{Available: true, SortBy: "size", Sort: Ascending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"none", "big", "small"}; !reflect.DeepEqual(ids(asc), want) {
		t.Errorf("ascending: got %v, want %v", ids(asc), want)
	}

	desc, err := Run(products, &Filter{Available: true, SortBy: "size", Sort: Descending, ResultsPerPage: 10, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"small", "big", "none"}; !reflect.DeepEqual(ids(desc), want) {
		t.Errorf("descending: got %v, want %v", ids(desc), want)
	}
}

func TestRun_unknownSortKey(t *testing.T) {
	_, err := Run(nil, &Filter{Available: true, SortBy: "colour", ResultsPerPage: 1, Page: 1})
	var keyErr *UnknownSortKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("got %v, want *UnknownSortKeyError", err)
	}
	if keyErr.Key != "colour" {
		t.Errorf("got key %q, want colour", keyErr.Key)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}
	tests := []struct {
		name                 string
		resultsPerPage, page int
		want                 []int
	}{
		{"first page", 2, 1, []int{0, 1}},
		{"second page", 2, 2, []int{2, 3}},
		{"short last page", 2, 3, []int{4}},
		{"past the end", 2, 4, []int{}},
		{"everything", 10, 1, []int{0, 1, 2, 3, 4}},
		// page 0 starts one item before the end of the collection
		{"page zero", 10, 0, []int{4}},
		{"page zero stops before start", 2, 0, []int{}},
		{"page minus one", 6, -1, []int{3}},
		{"far negative", 2, -10, []int{}},
		{"far negative wide", 20, -10, []int{0, 1, 2, 3, 4}},
		{"zero per page", 0, 1, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.resultsPerPage, tt.page)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paginate(%d, %d) = %v, want %v", tt.resultsPerPage, tt.page, got, tt.want)
			}
		})
	}
}

func TestSortKeys(t *testing.T) {
	keys := SortKeys()
	if len(keys) != len(sortKeys) {
		t.Fatalf("got %d keys, want %d", len(keys), len(sortKeys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}
