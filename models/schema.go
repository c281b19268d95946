package models

// Schema lists every persisted model in migration order.
func Schema() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&ProductOption{},
		&ProductOptionValue{},
		&ProductCategory{},
	}
}
