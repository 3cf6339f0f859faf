// Package shopping turns a week's ingredient text into a categorized,
// deduplicated, checkable grocery list.
package shopping

// Category is a grocery aisle grouping.
type Category string

const (
	CategoryFresh     Category = "Fresh"
	CategoryMeatFish  Category = "Meat & Fish"
	CategoryDairyEggs Category = "Dairy & Eggs"
	CategoryOther     Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFresh, CategoryMeatFish, CategoryDairyEggs, CategoryOther}

// Item is one unique ingredient on the list. It is derived view state and
// never persisted.
type Item struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Category   Category `json:"category"`
	Checked    bool     `json:"checked"`
}

// Section is a non-empty category with its items in display order.
type Section struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}
