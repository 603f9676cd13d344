package attendance

import (
	"proformacli/pkg/contracts/domain"
)

// CategoryRule describes one risk tier: a half-open percentage interval
// [Min, Max) plus display metadata.
type CategoryRule struct {
	Min         float64
	Max         float64
	Label       string
	Color       string
	Description string
}

// categoryRules is the static rule table, ordered ascending. Read-only after
// initialization.
var categoryRules = []struct {
	Category domain.Category
	Rule     CategoryRule
}{
	{domain.CategoryCritical, CategoryRule{
		Min: 0, Max: 65,
		Label:       "Critical",
		Color:       "#f44336",
		Description: "Requires immediate attention",
	}},
	{domain.CategoryDanger, CategoryRule{
		Min: 65, Max: 75,
		Label:       "Not Safe / Danger",
		Color:       "#ff9800",
		Description: "At risk of falling below minimum",
	}},
	{domain.CategoryBorder, CategoryRule{
		Min: 75, Max: 80,
		Label:       "Border",
		Color:       "#ffc107",
		Description: "Close to safe threshold",
	}},
	{domain.CategorySafe, CategoryRule{
		Min: 80, Max: 100,
		Label:       "Safe",
		Color:       "#4caf50",
		Description: "Meeting attendance requirements",
	}},
}

// CategoryFor maps a percentage to its risk tier. Boundaries are closed on
// the lower edge: exactly 65.0 is danger, 75.0 border, 80.0 safe. Anything
// at or above the top interval falls through to safe.
func CategoryFor(percentage float64) domain.Category {
	for _, entry := range categoryRules {
		if percentage >= entry.Rule.Min && percentage < entry.Rule.Max {
			return entry.Category
		}
	}
	return domain.CategorySafe
}

// RuleFor returns the display metadata for a category. Unknown categories
// fall back to the safe rule, mirroring the rule table's own default.
func RuleFor(category domain.Category) CategoryRule {
	for _, entry := range categoryRules {
		if entry.Category == category {
			return entry.Rule
		}
	}
	return categoryRules[len(categoryRules)-1].Rule
}
