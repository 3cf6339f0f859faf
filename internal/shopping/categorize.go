package shopping

import "strings"

// Keyword tables, tested in order. "egg" sits in both of the last two on
// purpose: the first table to match wins, so eggs land in Meat & Fish.
var keywordTables = []struct {
	category Category
	keywords []string
}{
	{CategoryFresh, []string{
		"lettuce", "tomato", "onion", "carrot", "broccoli", "spinach", "apple", "banana",
		"potato", "avocado", "pepper", "cucumber", "herb", "lime", "lemon", "mushroom",
	}},
	{CategoryMeatFish, []string{
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "egg", "bacon", "turkey",
	}},
	{CategoryDairyEggs, []string{
		"milk", "cheese", "yogurt", "cream", "butter", "egg",
	}},
}

// Categorize assigns an ingredient to a category by case-insensitive
// substring match. Anything unmatched is Other.
func Categorize(ingredient string) Category {
	lower := strings.ToLower(ingredient)
	for _, table := range keywordTables {
		for _, kw := range table.keywords {
			if strings.Contains(lower, kw) {
				return table.category
			}
		}
	}
	return CategoryOther
}
