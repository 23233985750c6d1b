package model

// Category is a box size tier.
type Category string

const (
	CategorySmall  Category = "small"
	CategoryMedium Category = "medium"
	CategoryLarge  Category = "large"
)

// Categories lists the tiers from smallest to largest.
var Categories = []Category{CategorySmall, CategoryMedium, CategoryLarge}

// Allowed box areas per tier (m²), smallest first.
var categorySizes = map[Category][]float64{
	CategorySmall:  {2, 3},
	CategoryMedium: {4, 5, 6},
	CategoryLarge:  {8, 10, 12},
}

// Sizes returns the allowed areas of the tier, smallest first.
func (c Category) Sizes() []float64 {
	sizes := categorySizes[c]
	out := make([]float64, len(sizes))
	copy(out, sizes)
	return out
}

// Allows reports whether area is one of the tier's sizes.
func (c Category) Allows(area float64) bool {
	for _, s := range categorySizes[c] {
		if s == area {
			return true
		}
	}
	return false
}

// Label returns a human readable tier name with its size range.
func (c Category) Label() string {
	switch c {
	case CategorySmall:
		return "Small (2-3 m²)"
	case CategoryMedium:
		return "Medium (4-6 m²)"
	case CategoryLarge:
		return "Large (8-12 m²)"
	default:
		return string(c)
	}
}

// CategoryForArea returns the tier whose size set contains area.
func CategoryForArea(area float64) (Category, bool) {
	for _, c := range Categories {
		if c.Allows(area) {
			return c, true
		}
	}
	return "", false
}

// Box is one storage unit of the generated layout.
type Box struct {
	Number   int      `json:"number"` // display position after sorting, 1-based
	Area     float64  `json:"area"`   // m²
	Category Category `json:"category"`
}

// FrontWidth returns the box front length for the given depth.
func (b Box) FrontWidth(depth float64) float64 {
	if depth == 0 {
		return 0
	}
	return b.Area / depth
}

// BoxCounts aggregates a layout by tier.
type BoxCounts struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// Total returns the number of boxes across all tiers.
func (c BoxCounts) Total() int {
	return c.Small + c.Medium + c.Large
}

// CountBoxes tallies boxes per tier.
func CountBoxes(boxes []Box) BoxCounts {
	var c BoxCounts
	for _, b := range boxes {
		switch b.Category {
		case CategorySmall:
			c.Small++
		case CategoryMedium:
			c.Medium++
		case CategoryLarge:
			c.Large++
		}
	}
	return c
}

// TotalArea sums the box areas.
func TotalArea(boxes []Box) float64 {
	var total float64
	for _, b := range boxes {
		total += b.Area
	}
	return total
}
