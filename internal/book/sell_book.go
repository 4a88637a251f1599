package book

// askLess orders the ask book so that Min is the best ask: lowest price, and
// within a price the earliest arrival.
func askLess(a, b entry) bool {
	if a.key.Price == b.key.Price {
		return a.key.Seq < b.key.Seq // Time should be smallest (earliest) first
	}
	return a.key.Price < b.key.Price
}
