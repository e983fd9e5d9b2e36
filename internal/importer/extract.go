package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsedRecipe is the transient result of an import, returned to the
// client for review before it is submitted as a regular recipe.
type ParsedRecipe struct {
	Title       string             `json:"title"`
	PrepTime    *int               `json:"prep_time"`
	ServingSize *int               `json:"serving_size"`
	Directions  string             `json:"directions"`
	Notes       string             `json:"notes"`
	Ingredients []ParsedIngredient `json:"ingredients"`
}

// extractor is one strategy for pulling a recipe out of a fetched
// document. Extract returns nil when the strategy does not apply, and
// the orchestrator moves on to the next one.
type extractor interface {
	Extract(doc *goquery.Document) *ParsedRecipe
}

var (
	stepPrefixRe = regexp.MustCompile(`(?i)^step\s*\d+`)
	numberedRe   = regexp.MustCompile(`^\d+\.`)
	firstIntRe   = regexp.MustCompile(`\d+`)
)

// numberSteps joins direction lines into one block, prefixing each
// line with "Step {n}: " unless it already carries step numbering.
func numberSteps(lines []string) string {
	steps := make([]string, 0, len(lines))
	n := 1
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case stepPrefixRe.MatchString(line):
			steps = append(steps, line)
		case numberedRe.MatchString(line):
			steps = append(steps, numberedRe.ReplaceAllString(line, fmt.Sprintf("Step %d:", n)))
			n++
		default:
			steps = append(steps, fmt.Sprintf("Step %d: %s", n, line))
			n++
		}
	}
	return strings.Join(steps, "\n\n")
}

// firstInt pulls the first embedded integer out of text, or nil.
func firstInt(text string) *int {
	m := firstIntRe.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}
