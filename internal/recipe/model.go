package recipe

import (
	"strings"
	"time"
)

// Category groups recipes. A fixed default set is seeded at startup.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Ingredient is a globally shared, case-normalized ingredient name.
// Rows are created on first reference and never deleted.
type Ingredient struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Recipe represents a stored recipe.
type Recipe struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	CategoryID   *int64    `json:"category_id" db:"category_id"`
	CategoryName *string   `json:"category_name,omitempty" db:"category_name"`
	Directions   string    `json:"directions" db:"directions"`
	PrepTime     *int      `json:"prep_time" db:"prep_time"`
	ServingSize  *int      `json:"serving_size" db:"serving_size"`
	Notes        string    `json:"notes" db:"notes"`
	DateAdded    time.Time `json:"date_added" db:"date_added"`

	// Ingredients is populated on detail reads only.
	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
}

// RecipeIngredient is one row of a recipe's ingredient list, joined
// with the ingredient name.
type RecipeIngredient struct {
	RecipeID       int64  `json:"recipe_id" db:"recipe_id"`
	IngredientID   int64  `json:"ingredient_id" db:"ingredient_id"`
	IngredientName string `json:"ingredient_name" db:"ingredient_name"`
	Quantity       string `json:"quantity" db:"quantity"`
	Unit           string `json:"unit" db:"unit"`
	IsAlternative  bool   `json:"is_alternative" db:"is_alternative"`
	AlternativeFor *int64 `json:"alternative_for" db:"alternative_for"`
}

// IngredientInput is one ingredient line as submitted by a client.
// Entries with an empty name are filtered out before persisting.
type IngredientInput struct {
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	IsAlternative  bool   `json:"is_alternative"`
	AlternativeFor *int64 `json:"alternative_for"`
}

// Input is the create/update payload for a recipe.
type Input struct {
	Title       string            `json:"title"`
	CategoryID  *int64            `json:"category_id"`
	Directions  string            `json:"directions"`
	PrepTime    *int              `json:"prep_time"`
	ServingSize *int              `json:"serving_size"`
	Notes       string            `json:"notes"`
	Ingredients []IngredientInput `json:"ingredients"`
}

// NamedIngredients returns the ingredient entries that carry a
// non-empty name, preserving order.
func (in Input) NamedIngredients() []IngredientInput {
	var valid []IngredientInput
	for _, ing := range in.Ingredients {
		if strings.TrimSpace(ing.Name) != "" {
			valid = append(valid, ing)
		}
	}
	return valid
}
