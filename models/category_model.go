package models

type Category string

// CategoryAll is the filter value that disables category filtering.
const CategoryAll Category = "all"

const (
	CategorySpecialty   Category = "specialty"
	CategoryIrani       Category = "irani"
	CategoryBakery      Category = "bakery"
	CategoryChain       Category = "chain"
	CategoryTraditional Category = "traditional"
	CategoryContinental Category = "continental"
	CategoryArt         Category = "art"
)

type CategoryOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// CategoryOptions lists the filter choices in display order, "all" first.
var CategoryOptions = []CategoryOption{
	{Value: CategoryAll, Label: "All Types"},
	{Value: CategorySpecialty, Label: "Specialty Coffee"},
	{Value: CategoryIrani, Label: "Irani Cafe"},
	{Value: CategoryBakery, Label: "Bakery Cafe"},
	{Value: CategoryChain, Label: "Chain Cafe"},
	{Value: CategoryTraditional, Label: "Traditional"},
	{Value: CategoryContinental, Label: "Continental"},
	{Value: CategoryArt, Label: "Art Cafe"},
}

// Label returns the display label for a filter value, or the raw value if unknown.
func (c Category) Label() string {
	for _, opt := range CategoryOptions {
		if opt.Value == c {
			return opt.Label
		}
	}
	return string(c)
}
