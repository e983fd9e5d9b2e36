package recipe

import (
	"math"
	"sort"
	"strings"
)

// MatchResult is one ranked entry from a fridge search.
type MatchResult struct {
	RecipeID         int64   `json:"id"`
	Title            string  `json:"title"`
	PrepTime         *int    `json:"prep_time"`
	Category         *string `json:"category"`
	MatchingCount    int     `json:"matching_count"`
	TotalIngredients int     `json:"total_ingredients"`
	MatchPercentage  float64 `json:"match_percentage"`
}

// MatchRow is one recipe/ingredient pair as loaded from the junction
// table, the raw material the scorer works on.
type MatchRow struct {
	RecipeID       int64   `db:"id"`
	Title          string  `db:"title"`
	PrepTime       *int    `db:"prep_time"`
	Category       *string `db:"category"`
	IngredientName string  `db:"ingredient_name"`
}

// MatchRecipes scores every recipe in rows against the pantry and
// returns the ones with at least one matching ingredient, ranked by
// match percentage, then matching count, then prep time.
//
// A pantry entry of 4+ characters matches an ingredient by exact
// equality or by substring containment in either direction (the
// ingredient name must itself be 4+ characters for the reverse
// direction). Shorter entries require exact equality, so "egg" does
// not drag in "eggplant".
func MatchRecipes(pantry []string, rows []MatchRow) []MatchResult {
	cleaned := make([]string, 0, len(pantry))
	for _, p := range pantry {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	type tally struct {
		result  MatchResult
		matched map[string]bool
	}

	totals := make(map[int64]*tally)
	order := make([]int64, 0)

	for _, row := range rows {
		t, ok := totals[row.RecipeID]
		if !ok {
			t = &tally{
				result: MatchResult{
					RecipeID: row.RecipeID,
					Title:    row.Title,
					PrepTime: row.PrepTime,
					Category: row.Category,
				},
				matched: make(map[string]bool),
			}
			totals[row.RecipeID] = t
			order = append(order, row.RecipeID)
		}

		name := strings.ToLower(strings.TrimSpace(row.IngredientName))
		t.result.TotalIngredients++

		// Count each distinct recipe ingredient once, no matter how
		// many pantry entries it matches.
		if t.matched[name] {
			continue
		}
		for _, p := range cleaned {
			if ingredientMatches(name, p) {
				t.matched[name] = true
				t.result.MatchingCount++
				break
			}
		}
	}

	results := make([]MatchResult, 0, len(order))
	for _, id := range order {
		t := totals[id]
		if t.result.MatchingCount == 0 {
			continue
		}
		t.result.MatchPercentage = roundPercent(t.result.MatchingCount, t.result.TotalIngredients)
		results = append(results, t.result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchPercentage != b.MatchPercentage {
			return a.MatchPercentage > b.MatchPercentage
		}
		if a.MatchingCount != b.MatchingCount {
			return a.MatchingCount > b.MatchingCount
		}
		return lessPrepTime(a.PrepTime, b.PrepTime)
	})

	return results
}

func ingredientMatches(name, pantry string) bool {
	if name == pantry {
		return true
	}
	if len(pantry) < 4 {
		return false
	}
	if strings.Contains(name, pantry) {
		return true
	}
	return len(name) >= 4 && strings.Contains(pantry, name)
}

func roundPercent(matching, total int) float64 {
	return math.Round(float64(matching)*100/float64(total)*100) / 100
}

// Recipes without a prep time sort after those with one.
func lessPrepTime(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
