package models

// Category is the closed set of spending categories shared by expenses and
// budgets.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryUtilities      Category = "Utilities"
	CategoryShopping       Category = "Shopping"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryBikeRepairing  Category = "Bike Repairing"
	CategoryPetrol         Category = "Petrol"
	CategoryRent           Category = "Rent"
	CategoryInsurance      Category = "Insurance"
	CategoryOther          Category = "Other"
)

var categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategoryBikeRepairing,
	CategoryPetrol,
	CategoryRent,
	CategoryInsurance,
	CategoryOther,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}()

// Categories returns every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is one of the known categories. Matching is exact.
func (c Category) IsValid() bool {
	_, ok := categorySet[c]
	return ok
}
