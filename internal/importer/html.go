package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlHeuristic extracts recipe fields with ordered per-field selector
// tables, used when a page has no structured data. Site-specific
// selectors come first, generic ones last; the first selector whose
// text passes the field's validity check wins. Supporting a new site
// means adding rows to these tables.
type htmlHeuristic struct{}

// candidate pairs a CSS selector with an optional substring the
// element text must contain (stands in for the :contains() pseudo
// selector that CSS proper does not have).
type candidate struct {
	selector string
	contains string
}

var titleSelectors = []candidate{
	{selector: "h1.o-AssetTitle__a-HeadlineText"},
	{selector: ".o-RecipeInfo__a-Headline"},
	{selector: `h1[class*="recipe"]`},
	{selector: ".recipe-title"},
	{selector: "h1"},
	{selector: `[data-module="AssetTitle"] h1`},
	{selector: ".m-AssetTitle h1"},
}

var timeSelectors = []candidate{
	{selector: ".o-RecipeInfo__a-Description.m-RecipeInfo__a-Description--Total"},
	{selector: ".o-RecipeInfo__a-Description", contains: "min"},
	{selector: ".o-RecipeInfo__a-Description", contains: "hr"},
	{selector: ".o-RecipeInfo__a-Description"},
	{selector: `[class*="prep-time"]`},
	{selector: ".recipe-meta", contains: "Prep"},
	{selector: ".prep-time"},
	{selector: ".cooking-time"},
	{selector: `[data-testid*="time"]`},
}

var servingSelectors = []candidate{
	{selector: ".o-RecipeInfo__a-Description", contains: "serving"},
	{selector: ".o-RecipeInfo__a-Description", contains: "Serving"},
	{selector: ".o-RecipeInfo__a-Description", contains: "serves"},
	{selector: ".o-RecipeInfo__a-Description", contains: "Serves"},
	{selector: ".o-RecipeInfo__a-Description", contains: "yield"},
	{selector: `[class*="serving"]`},
	{selector: ".recipe-meta", contains: "Serves"},
	{selector: ".serving-size"},
	{selector: ".recipe-yield"},
}

var ingredientSelectors = []candidate{
	{selector: ".o-Ingredients__a-Ingredient--CheckboxLabel"},
	{selector: ".o-RecipeIngredients__a-Ingredient"},
	{selector: ".o-RecipeIngredients__a-ListItem"},
	{selector: ".o-RecipeIngredients li"},
	{selector: ".o-RecipeIngredients p"},
	{selector: `.o-RecipeIngredients div[class*="Ingredient"]`},
	{selector: `section[class*="ingredient"] p`},
	{selector: `section[class*="ingredient"] div`},
	{selector: ".recipe-ingredients li"},
	{selector: `[data-module="RecipeIngredients"] li`},
	{selector: ".m-RecipeIngredients li"},
	{selector: `section[class*="ingredient"] li`},
	{selector: ".recipe-ingredient"},
	{selector: ".ingredients-section li"},
	{selector: ".ingredient-list li"},
	{selector: ".recipe-card-ingredient"},
}

var directionSelectors = []candidate{
	{selector: ".o-Method__m-Step"},
	{selector: ".o-RecipeDirections__a-ListItem"},
	{selector: ".o-RecipeDirections li"},
	{selector: ".o-Method p"},
	{selector: `.o-Method div[class*="Step"]`},
	{selector: `section[class*="method"] p`},
	{selector: `section[class*="method"] div`},
	{selector: ".recipe-instructions li"},
	{selector: ".recipe-directions li"},
	{selector: ".instructions-list li"},
	{selector: ".method-list li"},
	{selector: ".recipe-method li"},
}

var noteSelectors = []candidate{
	{selector: ".recipe-description"},
	{selector: ".recipe-summary"},
	{selector: ".recipe-notes"},
	{selector: ".chef-notes"},
	{selector: ".cooking-tips"},
	{selector: ".recipe-intro p"},
}

var clockTimeRe = regexp.MustCompile(`(?i)(\d+)\s*(hr|hour|hours)?\s*(\d+)?\s*(min|minute|minutes)`)

func (htmlHeuristic) Extract(doc *goquery.Document) *ParsedRecipe {
	recipe := &ParsedRecipe{}

	recipe.Title = firstText(doc, titleSelectors, func(text string) bool {
		return len(text) > 5 && text != "Level:"
	})

	for _, c := range timeSelectors {
		text := selectionText(doc, c)
		if text == "" {
			continue
		}
		if minutes := parseClockTime(text); minutes > 0 {
			recipe.PrepTime = &minutes
			break
		}
	}

	for _, c := range servingSelectors {
		text := selectionText(doc, c)
		if text == "" {
			continue
		}
		if n := firstInt(text); n != nil {
			recipe.ServingSize = n
			break
		}
	}

	for _, c := range ingredientSelectors {
		lines := allTexts(doc, c, usableIngredientLine)
		if len(lines) == 0 {
			continue
		}
		for _, line := range lines {
			recipe.Ingredients = append(recipe.Ingredients, ParseIngredient(line))
		}
		break
	}

	for _, c := range directionSelectors {
		lines := allTexts(doc, c, func(text string) bool { return len(text) > 10 })
		if len(lines) == 0 {
			continue
		}
		recipe.Directions = numberSteps(lines)
		break
	}

	recipe.Notes = firstText(doc, noteSelectors, func(text string) bool {
		return len(text) > 20
	})

	// Generic fallback defaults: the review form always needs a title
	// and at least one ingredient row to render.
	if recipe.Title == "" {
		recipe.Title = "Imported Recipe"
	}
	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = []ParsedIngredient{{}}
	}

	return recipe
}

// selectionText returns the trimmed text of the first element matched
// by the candidate, honoring its contains filter.
func selectionText(doc *goquery.Document, c candidate) string {
	sel := doc.Find(c.selector)
	if c.contains != "" {
		needle := c.contains
		sel = sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), needle)
		})
	}
	return strings.TrimSpace(sel.First().Text())
}

// firstText walks the candidate list and returns the first text that
// passes accept.
func firstText(doc *goquery.Document, candidates []candidate, accept func(string) bool) string {
	for _, c := range candidates {
		if text := selectionText(doc, c); text != "" && accept(text) {
			return text
		}
	}
	return ""
}

// allTexts collects the trimmed texts of every element matched by the
// candidate that pass accept.
func allTexts(doc *goquery.Document, c candidate, accept func(string) bool) []string {
	var lines []string
	doc.Find(c.selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && accept(text) {
			lines = append(lines, text)
		}
	})
	return lines
}

func usableIngredientLine(text string) bool {
	lower := strings.ToLower(text)
	return len(text) > 2 &&
		!strings.Contains(lower, "ingredients") &&
		!strings.Contains(lower, "deselect") &&
		!strings.Contains(lower, "select all")
}

// parseClockTime reads an "{hours}h {minutes}m"-style phrase into
// total minutes, or 0 when no usable pattern is present.
func parseClockTime(text string) int {
	m := clockTimeRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	lead, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if m[2] != "" {
		total := lead * 60
		if m[3] != "" {
			if minutes, err := strconv.Atoi(m[3]); err == nil {
				total += minutes
			}
		}
		return total
	}
	return lead
}
