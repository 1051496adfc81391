package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&BuyerProfile{},
		&SellerProfile{},
		&Category{},
		&Subcategory{},
		&Product{},
		&ProductLike{},
		&Banner{},
	}
}
