package importer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredData extracts a recipe from JSON-LD script blocks. This is
// the highest-priority strategy: when a page ships Recipe markup it is
// far more reliable than any selector heuristic.
type structuredData struct{}

var isoMinutesRe = regexp.MustCompile(`PT(\d+)M`)

func (structuredData) Extract(doc *goquery.Document) *ParsedRecipe {
	var data map[string]any

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // malformed block, keep scanning
		}
		if found := findRecipeObject(raw); found != nil {
			data = found
			return false
		}
		return true
	})

	if data == nil {
		return nil
	}

	return &ParsedRecipe{
		Title:       asString(data["name"]),
		PrepTime:    parseISOMinutes(asString(data["prepTime"])),
		ServingSize: parseYield(data["recipeYield"]),
		Directions:  parseInstructions(data["recipeInstructions"]),
		Notes:       firstString(data, "recipeNotes", "cookingTips", "notes", "description"),
		Ingredients: parseIngredientList(data["recipeIngredient"]),
	}
}

// findRecipeObject locates a Recipe-typed object either at the top
// level or nested inside an @graph container.
func findRecipeObject(raw any) map[string]any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if isRecipeType(obj["@type"]) {
		return obj
	}
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return nil
	}
	for _, item := range graph {
		if m, ok := item.(map[string]any); ok && isRecipeType(m["@type"]) {
			return m
		}
	}
	return nil
}

// The @type key may be a single string or a list of types.
func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// parseISOMinutes reads the minutes-only ISO-8601 duration form PT{n}M.
func parseISOMinutes(s string) *int {
	m := isoMinutesRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// parseYield accepts a scalar or the first element of an array and
// extracts its leading integer.
func parseYield(y any) *int {
	if list, ok := y.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		y = list[0]
	}
	switch v := y.(type) {
	case string:
		return firstInt(v)
	case float64:
		n := int(v)
		return &n
	}
	return nil
}

// parseInstructions accepts a plain string or a list of steps, where
// each step may be a string or an object carrying text or name.
func parseInstructions(ins any) string {
	if ins == nil {
		return ""
	}
	items, ok := ins.([]any)
	if !ok {
		items = []any{ins}
	}

	var lines []string
	for _, item := range items {
		var text string
		switch v := item.(type) {
		case string:
			text = v
		case map[string]any:
			text = asString(v["text"])
			if text == "" {
				text = asString(v["name"])
			}
		}
		if text = strings.TrimSpace(text); text != "" {
			lines = append(lines, text)
		}
	}
	return numberSteps(lines)
}

func parseIngredientList(raw any) []ParsedIngredient {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var ingredients []ParsedIngredient
	for _, item := range items {
		if s := asString(item); strings.TrimSpace(s) != "" {
			ingredients = append(ingredients, ParseIngredient(s))
		}
	}
	return ingredients
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(data[key]); s != "" {
			return s
		}
	}
	return ""
}
