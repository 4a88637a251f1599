package book

// bidLess orders the bid book so that Max is the best bid: highest price,
// and within a price the earliest arrival.
func bidLess(a, b entry) bool {
	if a.key.Price == b.key.Price {
		return a.key.Seq > b.key.Seq // Earlier orders sort higher
	}
	return a.key.Price < b.key.Price
}
