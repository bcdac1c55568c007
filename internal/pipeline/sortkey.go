package pipeline

import (
	"sort"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

// sortKey is either numeric or text. Keys produced by one accessor are
// always of the same kind, except that an absent attribute is numeric zero.
type sortKey struct {
	num    float64
	text   string
	isText bool
}

func (k sortKey) less(o sortKey) bool {
	switch {
	case k.isText && o.isText:
		return k.text < o.text
	case k.isText != o.isText:
		return !k.isText
	default:
		return k.num < o.num
	}
}

type accessor func(store.Product) sortKey

func numKey(v float64) sortKey { return sortKey{num: v} }
func textKey(s string) sortKey { return sortKey{text: s, isText: true} }

func boolKey(b bool) sortKey {
	if b {
		return numKey(1)
	}
	return numKey(0)
}

var zeroKey = numKey(0)

func cakeKey(get func(store.Cake) bool) accessor {
	return func(p store.Product) sortKey {
		if c, ok := p.Variant.(store.Cake); ok {
			return boolKey(get(c))
		}
		return zeroKey
	}
}

func beverageKey(get func(store.Beverage) bool) accessor {
	return func(p store.Product) sortKey {
		if b, ok := p.Variant.(store.Beverage); ok {
			return boolKey(get(b))
		}
		return zeroKey
	}
}

var sortKeys = map[string]accessor{
	"id":   func(p store.Product) sortKey { return textKey(p.ID) },
	"name": func(p store.Product) sortKey { return textKey(p.Name) },
	"size": func(p store.Product) sortKey {
		if p.Size == "" {
			return zeroKey
		}
		return textKey(p.Size)
	},
	"price": func(p store.Product) sortKey {
		if p.Price == nil {
			return zeroKey
		}
		return numKey(*p.Price)
	},
	"available": func(p store.Product) sortKey { return boolKey(p.Available) },
	"lastUpdated": func(p store.Product) sortKey {
		if p.LastUpdated.IsZero() {
			return zeroKey
		}
		return numKey(float64(p.LastUpdated.UnixMicro()))
	},
	"hasFilling":           cakeKey(func(c store.Cake) bool { return c.HasFilling }),
	"hasNutsToppingOption": cakeKey(func(c store.Cake) bool { return c.HasNutsToppingOption }),
	"hasCreamOnTopOption":  beverageKey(func(b store.Beverage) bool { return b.HasCreamOnTopOption }),
	"hasServeOnIceOption":  beverageKey(func(b store.Beverage) bool { return b.HasServeOnIceOption }),
}

// SortKeys lists the accepted sortBy tokens in lexical order.
func SortKeys() []string {
	keys := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
