package service

import (
	"fmt"
	"strings"
)

// Sentinels keep the prompt unambiguous when optional inputs are absent.
const (
	noPreferences = "None"
	noContext     = "No prior recipes found."
)

// promptTemplate fixes the required output sections. Bold asterisks are
// forbidden up front because the backend tends to ignore formatting
// instructions; the parser strips them anyway.
const promptTemplate = `You are a professional Michelin-star chef.
I have the following ingredients: %s.
Dietary Preferences: %s.

Here is some context from my personal cookbook (use if relevant):
%s

TASK:
Create ONE single, highly detailed recipe.
Do NOT use bold asterisks (**) for the Title or Labels.
Follow this format EXACTLY:

Title: [Name of the Dish]
Description: [A short, mouth-watering summary]
Time: [Prep & Cook Time] | Servings: [Number]

### Ingredients
- [List items]

### Instructions
1. [Step 1]
2. [Step 2]
...

Chef's Tip: [A professional secret tip]`

// BuildPrompt renders the generation prompt from the confirmed ingredient
// list, optional dietary preferences and the retrieved cookbook context.
func BuildPrompt(ingredients []string, prefs string, context []QueryResult) string {
	if strings.TrimSpace(prefs) == "" {
		prefs = noPreferences
	}

	contextStr := noContext
	if len(context) > 0 {
		var b strings.Builder
		for _, r := range context {
			fmt.Fprintf(&b, "- %s (Ingredients: %s)\n", r.Title, r.Ingredients)
		}
		contextStr = strings.TrimRight(b.String(), "\n")
	}

	return fmt.Sprintf(promptTemplate, strings.Join(ingredients, ", "), prefs, contextStr)
}
