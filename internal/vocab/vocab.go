// Package vocab holds the static ingredient vocabulary the detection
// pipeline matches against, together with the synonym map used to
// normalize detector output to canonical terms.
package vocab

// Category labels for vocabulary terms.
const (
	Produce     = "Produce"
	Proteins    = "Proteins"
	PantryDairy = "Pantry & Dairy"
)

// Categories maps each category to its canonical ingredient terms.
var Categories = map[string][]string{
	Produce: {
		"tomato", "onion", "garlic", "ginger", "potato", "carrot",
		"cucumber", "broccoli", "cauliflower", "spinach", "cabbage",
		"lettuce", "bell pepper", "green chili", "red chili", "mushroom",
		"zucchini", "eggplant", "pumpkin", "green beans", "lemon", "lime",
		"avocado", "corn", "peas", "cilantro", "parsley", "basil",
	},
	Proteins: {
		"chicken", "chicken breast", "ground beef", "pork", "fish", "salmon",
		"tuna", "shrimp", "egg", "tofu", "paneer", "lentils", "chickpeas",
		"black beans", "kidney beans",
	},
	PantryDairy: {
		"rice", "basmati rice", "pasta", "spaghetti", "macaroni", "bread",
		"flour", "sugar", "salt", "pepper", "oil", "olive oil", "soy sauce",
		"vinegar", "cheese", "cheddar", "mozzarella", "milk", "butter",
		"yogurt", "cream", "mayonnaise", "ketchup", "mustard",
	},
}

// categoryOrder fixes the flattening order. The flattened term list is used
// as an index into parallel embedding arrays, so it must be stable across
// process restarts.
var categoryOrder = []string{Produce, Proteins, PantryDairy}

var terms []string

func init() {
	for _, cat := range categoryOrder {
		terms = append(terms, Categories[cat]...)
	}
}

// Synonyms maps raw detected strings to their canonical vocabulary form.
var Synonyms = map[string]string{
	"capsicum":  "bell pepper",
	"tomatoes":  "tomato",
	"potatoes":  "potato",
	"chilies":   "chili",
	"aubergine": "eggplant",
	"coriander": "cilantro",
	"eggs":      "egg",
}

// Terms returns the flattened vocabulary in stable order. Callers must not
// mutate the returned slice.
func Terms() []string {
	return terms
}

// Contains reports whether term is a canonical vocabulary entry.
func Contains(term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// Normalize maps a detected term to its canonical form. Unknown terms pass
// through unchanged, which makes normalization idempotent on terms that are
// already canonical.
func Normalize(term string) string {
	if canonical, ok := Synonyms[term]; ok {
		return canonical
	}
	return term
}
