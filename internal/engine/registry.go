package engine

import "slices"

// Registry remembers every order id an owner ever submitted. Entries are never
// pruned, it only answers whether an owner has a stake in an order.
type Registry struct {
	orders map[string][]string            // owner -> ids, in submission order
	owned  map[string]map[string]struct{} // owner -> set of ids
}

func NewRegistry() *Registry {
	return &Registry{
		orders: make(map[string][]string),
		owned:  make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Record(owner, orderID string) {
	ids, ok := r.owned[owner]
	if !ok {
		ids = make(map[string]struct{})
		r.owned[owner] = ids
	}
	if _, dup := ids[orderID]; dup {
		return
	}
	ids[orderID] = struct{}{}
	r.orders[owner] = append(r.orders[owner], orderID)
}

func (r *Registry) Owns(owner, orderID string) bool {
	_, ok := r.owned[owner][orderID]
	return ok
}

// Orders returns a copy of the ids submitted by owner.
func (r *Registry) Orders(owner string) []string {
	ids := r.orders[owner]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Stakeholders returns, without duplicates, the candidates that own any of
// orderIDs.
func (r *Registry) Stakeholders(candidates []string, orderIDs ...string) []string {
	var owners []string
	for _, owner := range candidates {
		if slices.Contains(owners, owner) {
			continue
		}
		for _, id := range orderIDs {
			if r.Owns(owner, id) {
				owners = append(owners, owner)
				break
			}
		}
	}
	return owners
}

