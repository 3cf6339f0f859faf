package recipe

import "fmt"

// Catalog is an ordered, read-only set of templates.
type Catalog []Template

// WithDiet keeps the templates tagged with d. DietNone applies no
// restriction and returns the catalog unchanged.
func (c Catalog) WithDiet(d Diet) Catalog {
	if d == DietNone {
		return c
	}
	var out Catalog
	for _, t := range c {
		if t.HasTag(d) {
			out = append(out, t)
		}
	}
	return out
}

// ForSkill keeps the templates a cook at level s is allowed.
func (c Catalog) ForSkill(s Skill) Catalog {
	var out Catalog
	for _, t := range c {
		if s.Admits(t.Difficulty) {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the template with the given name.
func (c Catalog) Find(name string) (Template, bool) {
	for _, t := range c {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Validate checks that every restricting diet has at least one easy
// template, so no preference combination can end up with nothing to cook.
func (c Catalog) Validate() error {
	for _, d := range AllDiets {
		if len(c.WithDiet(d).ForSkill(SkillEasy)) == 0 {
			return fmt.Errorf("catalog has no easy template for diet %q", d)
		}
	}
	return nil
}

// DefaultCatalog returns a fresh copy of the built-in templates.
func DefaultCatalog() Catalog {
	out := make(Catalog, len(builtin))
	copy(out, builtin)
	return out
}

var builtin = Catalog{
	{
		Name:         "Grilled Chicken Salad",
		Description:  "Fresh mixed greens with grilled chicken breast, cherry tomatoes, and balsamic vinaigrette",
		Ingredients:  []string{"Chicken breast", "Mixed greens", "Cherry tomatoes", "Cucumber", "Balsamic vinegar", "Olive oil", "Salt", "Pepper"},
		Instructions: []string{"Season chicken with salt and pepper", "Grill chicken for 6-8 minutes per side", "Chop vegetables", "Mix salad ingredients", "Drizzle with balsamic vinaigrette"},
		PrepMinutes:  10,
		CookMinutes:  15,
		Difficulty:   SkillEasy,
	},
	{
		Name:         "Pasta Primavera",
		Description:  "Colorful vegetable pasta with light cream sauce",
		Ingredients:  []string{"Pasta", "Broccoli", "Carrots", "Bell peppers", "Heavy cream", "Parmesan cheese", "Garlic", "Olive oil"},
		Instructions: []string{"Cook pasta according to package", "Sauté vegetables in olive oil", "Add cream and cheese", "Combine with pasta", "Season to taste"},
		PrepMinutes:  15,
		CookMinutes:  20,
		Difficulty:   SkillIntermediate,
		Tags:         []Diet{DietVegetarian},
	},
	{
		Name:         "Beef Bourguignon",
		Description:  "Slow-braised beef in red wine with mushrooms and pearl onions",
		Ingredients:  []string{"Beef chuck", "Red wine", "Beef stock", "Bacon", "Mushrooms", "Pearl onions", "Carrots", "Garlic", "Tomato paste", "Fresh thyme"},
		Instructions: []string{"Brown bacon and beef in batches", "Sauté carrots and onions", "Deglaze with red wine", "Add stock, tomato paste and thyme", "Braise in the oven for 3 hours", "Fry mushrooms and stir in before serving"},
		PrepMinutes:  30,
		CookMinutes:  180,
		Difficulty:   SkillAdvanced,
	},
	{
		Name:         "Turkey Tacos",
		Description:  "Quick ground turkey tacos with fresh salsa",
		Ingredients:  []string{"Ground turkey", "Taco shells", "Tomato", "Onion", "Lime", "Cheddar cheese", "Taco seasoning"},
		Instructions: []string{"Brown the turkey with taco seasoning", "Dice tomato and onion for salsa", "Warm the shells", "Fill shells and top with cheese and salsa"},
		PrepMinutes:  10,
		CookMinutes:  10,
		Difficulty:   SkillEasy,
	},
	{
		Name:         "Quinoa Buddha Bowl",
		Description:  "Nutritious quinoa bowl with roasted vegetables and tahini dressing",
		Ingredients:  []string{"Quinoa", "Sweet potato", "Chickpeas", "Kale", "Tahini", "Lemon", "Olive oil", "Spices"},
		Instructions: []string{"Cook quinoa", "Roast sweet potato and chickpeas", "Massage kale with olive oil", "Make tahini dressing", "Assemble bowl"},
		PrepMinutes:  15,
		CookMinutes:  25,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietVegetarian, DietVegan, DietGlutenFree},
	},
	{
		Name:         "Caprese Pasta",
		Description:  "Fresh mozzarella, tomatoes, and basil with pasta",
		Ingredients:  []string{"Pasta", "Fresh mozzarella", "Cherry tomatoes", "Fresh basil", "Olive oil", "Balsamic glaze", "Salt", "Pepper"},
		Instructions: []string{"Cook pasta", "Chop tomatoes and mozzarella", "Tear basil leaves", "Combine ingredients", "Drizzle with olive oil and balsamic"},
		PrepMinutes:  10,
		CookMinutes:  15,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietVegetarian},
	},
	{
		Name:         "Mushroom Risotto",
		Description:  "Creamy arborio risotto with wild mushrooms and parmesan",
		Ingredients:  []string{"Arborio rice", "Mixed mushrooms", "Vegetable stock", "White wine", "Onion", "Butter", "Parmesan cheese", "Fresh parsley"},
		Instructions: []string{"Sauté mushrooms and set aside", "Soften onion in butter", "Toast rice and deglaze with wine", "Add stock a ladle at a time, stirring", "Fold in mushrooms, butter and parmesan"},
		PrepMinutes:  15,
		CookMinutes:  35,
		Difficulty:   SkillAdvanced,
		Tags:         []Diet{DietVegetarian, DietGlutenFree},
	},
	{
		Name:         "Chickpea Curry",
		Description:  "Spicy chickpea curry with coconut milk and vegetables",
		Ingredients:  []string{"Chickpeas", "Coconut milk", "Onion", "Garlic", "Ginger", "Curry powder", "Spinach", "Rice"},
		Instructions: []string{"Sauté onion, garlic, and ginger", "Add curry powder", "Add chickpeas and coconut milk", "Simmer for 15 minutes", "Add spinach", "Serve with rice"},
		PrepMinutes:  10,
		CookMinutes:  20,
		Difficulty:   SkillIntermediate,
		Tags:         []Diet{DietVegan, DietGlutenFree},
	},
	{
		Name:         "Vegan Buddha Bowl",
		Description:  "Colorful bowl with quinoa, roasted vegetables, and avocado",
		Ingredients:  []string{"Quinoa", "Broccoli", "Carrots", "Avocado", "Tahini", "Lemon", "Seeds", "Olive oil"},
		Instructions: []string{"Cook quinoa", "Roast vegetables", "Make tahini sauce", "Slice avocado", "Assemble bowl", "Sprinkle with seeds"},
		PrepMinutes:  15,
		CookMinutes:  20,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietVegan, DietGlutenFree},
	},
	{
		Name:         "Stuffed Bell Peppers",
		Description:  "Peppers filled with spiced lentils, rice and tomato",
		Ingredients:  []string{"Bell peppers", "Green lentils", "Rice", "Tomato sauce", "Onion", "Garlic", "Cumin", "Smoked paprika"},
		Instructions: []string{"Cook lentils and rice", "Sauté onion and garlic with spices", "Mix filling with tomato sauce", "Stuff hollowed peppers", "Bake for 30 minutes"},
		PrepMinutes:  20,
		CookMinutes:  40,
		Difficulty:   SkillIntermediate,
		Tags:         []Diet{DietVegan, DietVegetarian, DietGlutenFree},
	},
	{
		Name:         "Keto Chicken Alfredo",
		Description:  "Creamy alfredo sauce with chicken over zucchini noodles",
		Ingredients:  []string{"Chicken breast", "Heavy cream", "Parmesan cheese", "Zucchini", "Garlic", "Butter", "Salt", "Pepper"},
		Instructions: []string{"Spiralize zucchini", "Cook chicken", "Make alfredo sauce", "Combine with zucchini noodles", "Season to taste"},
		PrepMinutes:  15,
		CookMinutes:  20,
		Difficulty:   SkillIntermediate,
		Tags:         []Diet{DietKeto, DietGlutenFree},
	},
	{
		Name:         "Keto Salmon with Vegetables",
		Description:  "Baked salmon with roasted asparagus and cauliflower rice",
		Ingredients:  []string{"Salmon fillet", "Asparagus", "Cauliflower", "Olive oil", "Lemon", "Garlic", "Herbs", "Butter"},
		Instructions: []string{"Season salmon", "Roast asparagus", "Make cauliflower rice", "Bake salmon", "Serve together"},
		PrepMinutes:  10,
		CookMinutes:  25,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietKeto, DietGlutenFree},
	},
	{
		Name:         "Bacon and Egg Cups",
		Description:  "Baked eggs in bacon cups with spinach and cheddar",
		Ingredients:  []string{"Bacon", "Eggs", "Spinach", "Cheddar cheese", "Salt", "Pepper"},
		Instructions: []string{"Line muffin tin with bacon", "Add spinach and crack an egg into each cup", "Top with cheddar", "Bake for 15 minutes"},
		PrepMinutes:  5,
		CookMinutes:  15,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietKeto, DietGlutenFree},
	},
	{
		Name:         "Pan-Seared Duck Breast",
		Description:  "Crispy-skinned duck breast with a butter and thyme pan sauce",
		Ingredients:  []string{"Duck breast", "Butter", "Fresh thyme", "Garlic", "Chicken stock", "Green beans", "Salt", "Pepper"},
		Instructions: []string{"Score the duck skin", "Render skin-side down in a cold pan", "Flip and finish to medium", "Rest the meat", "Build a pan sauce with stock, butter and thyme", "Blanch green beans and serve"},
		PrepMinutes:  15,
		CookMinutes:  25,
		Difficulty:   SkillAdvanced,
		Tags:         []Diet{DietKeto, DietGlutenFree},
	},
	{
		Name:         "Gluten-Free Stir Fry",
		Description:  "Colorful vegetable stir fry with tamari sauce and rice",
		Ingredients:  []string{"Rice", "Broccoli", "Bell peppers", "Carrots", "Tamari sauce", "Ginger", "Garlic", "Sesame oil"},
		Instructions: []string{"Cook rice", "Chop vegetables", "Stir fry vegetables", "Add tamari sauce", "Serve over rice"},
		PrepMinutes:  15,
		CookMinutes:  15,
		Difficulty:   SkillEasy,
		Tags:         []Diet{DietGlutenFree, DietVegan},
	},
	{
		Name:         "Gluten-Free Pizza",
		Description:  "Cauliflower crust pizza with fresh toppings",
		Ingredients:  []string{"Cauliflower", "Eggs", "Cheese", "Tomato sauce", "Mozzarella", "Basil", "Olive oil", "Italian herbs"},
		Instructions: []string{"Make cauliflower crust", "Bake crust", "Add sauce and toppings", "Bake until cheese melts"},
		PrepMinutes:  20,
		CookMinutes:  30,
		Difficulty:   SkillIntermediate,
		Tags:         []Diet{DietGlutenFree, DietVegetarian},
	},
	{
		Name:         "Shrimp Paella",
		Description:  "Saffron rice with shrimp, peppers and a crisp socarrat",
		Ingredients:  []string{"Bomba rice", "Shrimp", "Saffron", "Chicken stock", "Red bell pepper", "Onion", "Garlic", "Peas", "Smoked paprika", "Lemon"},
		Instructions: []string{"Bloom saffron in warm stock", "Sauté onion, pepper and garlic", "Toast rice with paprika", "Add stock and do not stir", "Nestle shrimp and peas on top", "Raise heat to form the socarrat", "Rest and serve with lemon"},
		PrepMinutes:  20,
		CookMinutes:  40,
		Difficulty:   SkillAdvanced,
		Tags:         []Diet{DietGlutenFree},
	},
}
