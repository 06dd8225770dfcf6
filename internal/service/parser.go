package service

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultRecipeTitle is used when the generated text never produces a
// recognizable title line, so a recipe is always displayable.
const DefaultRecipeTitle = "Chef's Special Creation"

// ParsedRecipe is the structured form of raw generated text: a title plus
// ordered, display-ready body fragments.
type ParsedRecipe struct {
	Title     string   `json:"title"`
	Fragments []string `json:"fragments"`
}

// Body joins the fragments into one displayable block.
func (r ParsedRecipe) Body() string {
	return strings.Join(r.Fragments, "\n")
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// cleanLine normalizes markdown emphasis the backend emits despite being
// told not to: known bold label prefixes are stripped outright, remaining
// bold spans become strong-emphasis elements.
func cleanLine(line string) string {
	line = strings.ReplaceAll(line, "**Title:**", "Title:")
	line = strings.ReplaceAll(line, "**Description:**", "Description:")
	return boldPattern.ReplaceAllString(line, "<b>$1</b>")
}

// lineRule classifies one body line. Rules are evaluated in order; the
// first match wins.
type lineRule struct {
	match  func(string) bool
	render func(string) string
}

var stepPattern = regexp.MustCompile(`^\d+\.`)

var bodyRules = []lineRule{
	{
		match: func(l string) bool { return strings.HasPrefix(l, "Description:") },
		render: func(l string) string {
			content := strings.TrimSpace(strings.TrimPrefix(l, "Description:"))
			return fmt.Sprintf("<p class='recipe-desc'><span class='label'>Description:</span> %s</p>", content)
		},
	},
	{
		match:  func(l string) bool { return strings.HasPrefix(l, "Time:") },
		render: func(l string) string { return fmt.Sprintf("<p class='recipe-meta'>%s</p>", l) },
	},
	{
		match:  func(l string) bool { return strings.Contains(l, "###") && strings.Contains(l, "Ingredients") },
		render: func(string) string { return "<h3>Ingredients</h3>" },
	},
	{
		match:  func(l string) bool { return strings.Contains(l, "###") && strings.Contains(l, "Instructions") },
		render: func(string) string { return "<h3>Instructions</h3>" },
	},
	{
		match:  func(l string) bool { return strings.HasPrefix(l, "- ") },
		render: func(l string) string { return fmt.Sprintf("<li>%s</li>", l[2:]) },
	},
	{
		match:  func(l string) bool { return stepPattern.MatchString(l) },
		render: func(l string) string { return fmt.Sprintf("<p class='step'>%s</p>", l) },
	},
	{
		match:  func(l string) bool { return l != "" },
		render: func(l string) string { return fmt.Sprintf("<p>%s</p>", l) },
	},
}

// ParseRecipe converts raw generated text into a structured recipe. The
// parser is forgiving by design: the first title-like line (a "Title:"
// marker or a "##" heading) becomes the title, every later line is
// classified by the body rules, empty lines are dropped, and nothing here
// can fail.
func ParseRecipe(raw string) ParsedRecipe {
	parsed := ParsedRecipe{Title: DefaultRecipeTitle, Fragments: []string{}}

	titleFound := false
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = cleanLine(strings.TrimSpace(line))

		if !titleFound && (strings.HasPrefix(line, "Title:") || strings.HasPrefix(line, "##")) {
			title := strings.ReplaceAll(line, "Title:", "")
			title = strings.ReplaceAll(title, "##", "")
			parsed.Title = strings.TrimSpace(title)
			titleFound = true
			continue
		}

		for _, rule := range bodyRules {
			if rule.match(line) {
				parsed.Fragments = append(parsed.Fragments, rule.render(line))
				break
			}
		}
	}

	return parsed
}
