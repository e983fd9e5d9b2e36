package importer

import (
	"regexp"
	"strings"
)

// ParsedIngredient is one normalized ingredient line.
type ParsedIngredient struct {
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	Unit          string `json:"unit"`
	IsAlternative bool   `json:"is_alternative"`
}

var (
	bulletRe      = regexp.MustCompile(`^[-•*]\s*`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	parentheticRe = regexp.MustCompile(`\s*\([^)]*\)`)

	// Cooking-instruction clauses are stripped only when introduced by
	// a comma or a space and running to the end of the line, so an
	// ingredient name containing one of these words mid-phrase is left
	// alone.
	commaInstructionRe = regexp.MustCompile(`(?i),\s*(finely diced|finely ground|chopped|sliced|minced|grated|crushed|roughly chopped|thinly sliced|cooked|for serving).*$`)
	spaceInstructionRe = regexp.MustCompile(`(?i)\s+(finely diced|sliced|minced|grated|crushed|roughly chopped|thinly sliced|cooked|for serving).*$`)

	// Integer, decimal, simple fraction, or mixed number followed by
	// the rest of the line.
	quantityRe = regexp.MustCompile(`^(\d+(?:\s+\d+/\d+|\.\d+|/\d+)?)\s+(.+)$`)

	unitRe = regexp.MustCompile(`(?i)^(cups?|tablespoons?|tbsp|teaspoons?|tsp|pounds?|lbs?|ounces?|oz|cloves?|pieces?|cans?|jars?|packages?|stalks?|bunches?|heads?|slices?|large|medium|small|whole)\s+(.+)$`)

	leadingArticleRe = regexp.MustCompile(`(?i)^(of\s+|the\s+)`)
)

// ParseIngredient normalizes a free-text ingredient line into its
// name, quantity, and unit parts. It never fails: unparseable input
// comes back with the cleaned text as the name, and empty input comes
// back all-empty.
func ParseIngredient(text string) ParsedIngredient {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedIngredient{}
	}
	original := text

	text = bulletRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = parentheticRe.ReplaceAllString(text, "")
	text = commaInstructionRe.ReplaceAllString(text, "")
	text = spaceInstructionRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))

	var quantity, unit string
	name := text

	if m := quantityRe.FindStringSubmatch(text); m != nil {
		quantity = strings.TrimSpace(m[1])
		remainder := strings.TrimSpace(m[2])

		if um := unitRe.FindStringSubmatch(remainder); um != nil {
			unit = um[1]
			name = um[2]
		} else {
			name = remainder
		}
	}

	name = leadingArticleRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))

	// Never hand back an empty name for non-empty input.
	if len(name) < 2 {
		name = text
		quantity = ""
		unit = ""
	}
	if name == "" {
		name = original
	}

	return ParsedIngredient{Name: name, Quantity: quantity, Unit: unit}
}
