package enums

// Category is the coarse product classification assigned per invoice.
type Category string

const (
	CategoryBouillon   Category = "Bouillon"
	CategoryMayonnaise Category = "Mayonnaise"
	CategorySoup       Category = "Soup"
	CategorySeasoning  Category = "Seasoning"
	CategoryDairy      Category = "Dairy"
	CategoryWater      Category = "Water"
	CategoryBeverage   Category = "Beverage"
	CategorySnack      Category = "Snack"
	CategoryOther      Category = "Other"
)

var validCategories = []Category{
	CategoryBouillon,
	CategoryMayonnaise,
	CategorySoup,
	CategorySeasoning,
	CategoryDairy,
	CategoryWater,
	CategoryBeverage,
	CategorySnack,
	CategoryOther,
}

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is one of the built-in categories.
// Invoices may still carry custom free-text categories.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

