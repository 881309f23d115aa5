package store

// seedProducts is written to a new document on first start.
func seedProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Laptop Pro",
			Description: "Powerful laptop for professionals",
			Price:       1299.99,
			Category:    "electronics",
		},
		{
			ID:          2,
			Name:        "Smartphone X",
			Description: "Latest smartphone with advanced features",
			Price:       799.99,
			Category:    "electronics",
		},
		{
			ID:          3,
			Name:        "Coffee Maker",
			Description: "Automatic coffee maker with timer",
			Price:       49.99,
			Category:    "home",
		},
	}
}
