package pricing

import "strings"

// CategoryOthers is the fallback GST category applied when the caller sent an
// empty or unknown category.
const CategoryOthers = "others"

// GSTSettings captures the tax percentages of the active settings record.
type GSTSettings struct {
	DefaultPercentage float64            `json:"defaultGstPercentage"`
	Categories        map[string]float64 `json:"categories"`
}

// GST is the result of a tax computation.
type GST struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Category   string  `json:"category"`
}

// ComputeGST applies the category percentage to the amount. An unknown or
// empty category resolves to "others"; a category missing from the mapping
// falls back to the default percentage.
func ComputeGST(amount float64, category string, s GSTSettings) GST {
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat == "" {
		cat = CategoryOthers
	}
	pct, ok := s.Categories[cat]
	if !ok {
		cat = CategoryOthers
		if pct, ok = s.Categories[cat]; !ok {
			pct = s.DefaultPercentage
		}
	}
	return GST{
		Amount:     Round2(amount * pct / 100),
		Percentage: pct,
		Category:   cat,
	}
}
