package store

// ExpandIngredients returns the recipe of p with every ingredient reference
// looked up. Each entry is a fresh copy; a reference that does not resolve
// keeps its id and a nil Ingredient.
func (s *Store) ExpandIngredients(p Product) []ResolvedRecipe {
	if p.Ingredients == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ResolvedRecipe, len(p.Ingredients))
	for i, entry := range p.Ingredients {
		out[i] = ResolvedRecipe{RecipeEntry: entry}
		if idx, ok := s.ingredientIdx[entry.IngredientID]; ok {
			ing := s.ingredients[idx].clone()
			out[i].Ingredient = &ing
		}
	}
	return out
}

// ProductsFor returns the products listed on ing, in store order.
func (s *Store) ProductsFor(ing Ingredient) []Product {
	if len(ing.ProductIDs) == 0 {
		return []Product{}
	}

	wanted := make(map[string]struct{}, len(ing.ProductIDs))
	for _, id := range ing.ProductIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(ing.ProductIDs))
	for _, p := range s.products {
		if _, ok := wanted[p.ID]; ok {
			out = append(out, p.clone())
		}
	}
	return out
}

// SupplierFor returns the supplier of ing. ok is false when ing has no
// supplier or the supplier is unknown.
func (s *Store) SupplierFor(ing Ingredient) (Supplier, bool) {
	if ing.SupplierID == "" {
		return Supplier{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.supplierIdx[ing.SupplierID]
	if !ok {
		return Supplier{}, false
	}
	return s.suppliers[idx], true
}
