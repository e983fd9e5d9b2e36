package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// captionHeuristic extracts a recipe from a social-media post caption.
// Posts have no recipe markup at all, so this walks the caption line
// by line with a current-section state machine keyed on trigger words.
type captionHeuristic struct{}

type captionSection int

const (
	sectionNone captionSection = iota
	sectionIngredients
	sectionInstructions
	sectionNotes
)

var (
	captionSplitRe  = regexp.MustCompile(`[\n\r•·\-*]`)
	lineNumberingRe = regexp.MustCompile(`^[\d.\-*•\s]+`)
	titleSplitRe    = regexp.MustCompile(`[•\-|]`)
	recipeWordRe    = regexp.MustCompile(`(?i)recipe`)
)

func (captionHeuristic) Extract(doc *goquery.Document) *ParsedRecipe {
	recipe := &ParsedRecipe{}

	description := firstMetaContent(doc,
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[property="twitter:description"]`,
	)
	pageTitle := firstMetaContent(doc,
		`meta[property="og:title"]`,
		`meta[property="twitter:title"]`,
	)
	if pageTitle == "" {
		pageTitle = strings.TrimSpace(doc.Find("title").Text())
	}

	if description != "" {
		walkCaption(recipe, description)
	}

	// Derive a title from the page title when the caption had none.
	if recipe.Title == "" && pageTitle != "" {
		parts := titleSplitRe.Split(pageTitle, -1)
		if len(parts) > 0 {
			recipe.Title = strings.TrimSpace(parts[0])
		}
	}

	// Last resort: nothing usable anywhere, so grab the first long line
	// of visible text as a title and flag the result for manual review.
	if recipe.Title == "" && len(recipe.Ingredients) == 0 && recipe.Directions == "" {
		for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
			line = strings.TrimSpace(line)
			if len(line) > 10 && len(line) < 500 {
				recipe.Title = line
				recipe.Notes = "Content imported from a social media post. Please review and edit the recipe details."
				break
			}
		}
	}

	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = []ParsedIngredient{{}}
	}
	if recipe.Title == "" {
		recipe.Title = "Social Media Recipe"
	}
	if recipe.Directions == "" {
		recipe.Directions = "Please add cooking instructions from the original post."
	}

	return recipe
}

// walkCaption runs the section state machine over the caption text.
func walkCaption(recipe *ParsedRecipe, description string) {
	var lines []string
	for _, line := range captionSplitRe.Split(description, -1) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	section := sectionNone
	stepCounter := 1

	for i, line := range lines {
		lower := strings.ToLower(line)

		// Section triggers switch the state and consume the line.
		switch {
		case strings.Contains(lower, "ingredient") || strings.Contains(lower, "you need"):
			section = sectionIngredients
			continue
		case strings.Contains(lower, "instruction") || strings.Contains(lower, "method") ||
			strings.Contains(lower, "step") || strings.Contains(lower, "direction") ||
			strings.Contains(lower, "how to") || strings.Contains(lower, "recipe"):
			section = sectionInstructions
			stepCounter = 1
			continue
		case strings.Contains(lower, "note") || strings.Contains(lower, "tip") || strings.Contains(lower, "hint"):
			section = sectionNotes
			continue
		}

		// Metadata lines are diverted no matter which section is open.
		if strings.Contains(lower, "serve") || strings.Contains(lower, "portion") {
			if n := firstInt(line); n != nil {
				recipe.ServingSize = n
			}
			continue
		}
		if strings.Contains(lower, "prep") || strings.Contains(lower, "time") ||
			strings.Contains(lower, "minute") || strings.Contains(lower, "hour") {
			if n := firstInt(line); n != nil {
				recipe.PrepTime = n
			}
			continue
		}

		if recipe.Title == "" && len(line) > 5 && len(line) < 100 &&
			(strings.Contains(lower, "recipe") || i == 0) {
			recipe.Title = strings.TrimSpace(recipeWordRe.ReplaceAllString(line, ""))
			continue
		}

		switch section {
		case sectionIngredients:
			if len(line) > 2 {
				if clean := strings.TrimSpace(lineNumberingRe.ReplaceAllString(line, "")); clean != "" {
					recipe.Ingredients = append(recipe.Ingredients, ParseIngredient(clean))
				}
			}
		case sectionInstructions:
			if len(line) > 5 {
				clean := strings.TrimSpace(lineNumberingRe.ReplaceAllString(line, ""))
				if clean == "" {
					continue
				}
				step := clean
				if !stepPrefixRe.MatchString(clean) {
					step = fmt.Sprintf("Step %d: %s", stepCounter, clean)
				}
				if recipe.Directions != "" {
					recipe.Directions += "\n\n" + step
				} else {
					recipe.Directions = step
				}
				stepCounter++
			}
		case sectionNotes:
			if len(line) > 5 {
				if recipe.Notes != "" {
					recipe.Notes += " " + line
				} else {
					recipe.Notes = line
				}
			}
		}
	}
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}
