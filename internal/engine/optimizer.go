package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/piwi3910/boxplanner/internal/model"
)

// RandomSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded source. Seed 0 seeds from the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// tierPolicy describes how one tier draws its box sizes.
type tierPolicy struct {
	category   model.Category
	sizes      []float64 // smallest first
	thresholds []float64 // cumulative probabilities; the last size takes the rest
	slack      float64   // allowed overshoot of the tier target, m²
}

// Tiers are filled large first so the small tier absorbs what is left.
var tierPolicies = []tierPolicy{
	{category: model.CategoryLarge, sizes: []float64{8, 10, 12}, thresholds: []float64{0.7, 0.9}, slack: 2},
	{category: model.CategoryMedium, sizes: []float64{4, 5, 6}, thresholds: []float64{0.5, 0.8}, slack: 2},
	{category: model.CategorySmall, sizes: []float64{2, 3}, thresholds: []float64{0.6}, slack: 1},
}

// fillSize is the box used to top up the layout after all tiers ran.
const fillSize = 2

func (p tierPolicy) draw(r float64) float64 {
	for i, t := range p.thresholds {
		if r < t {
			return p.sizes[i]
		}
	}
	return p.sizes[len(p.sizes)-1]
}

// Optimizer synthesises box lists for a usable floor area.
type Optimizer struct {
	Rand RandomSource
}

// New creates an optimizer drawing sizes from src. A nil src uses a clock-seeded source.
func New(src RandomSource) *Optimizer {
	if src == nil {
		src = NewRandomSource(0)
	}
	return &Optimizer{Rand: src}
}

// Generate fills usableArea with boxes. Each tier gets usableArea × ratio,
// drawn with a bias toward its smallest size; whatever the tiers leave is
// topped up with 2 m² boxes. The result is sorted by area, largest first,
// and numbered in that order.
func (o *Optimizer) Generate(usableArea, smallRatio, mediumRatio, largeRatio float64) []model.Box {
	boxes := []model.Box{}
	if !(usableArea > 0) {
		return boxes
	}

	ratios := map[model.Category]float64{
		model.CategorySmall:  smallRatio,
		model.CategoryMedium: mediumRatio,
		model.CategoryLarge:  largeRatio,
	}

	var totalUsed float64
	for _, tier := range tierPolicies {
		placed := o.fillTier(tier, usableArea*ratios[tier.category])
		for _, b := range placed {
			totalUsed += b.Area
		}
		boxes = append(boxes, placed...)
	}

	for remaining := usableArea - totalUsed; remaining >= fillSize; remaining -= fillSize {
		boxes = append(boxes, model.Box{Area: fillSize, Category: model.CategorySmall})
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Area > boxes[j].Area
	})
	for i := range boxes {
		boxes[i].Number = i + 1
	}
	return boxes
}

// fillTier places boxes of one tier until its target is reached or
// neither the drawn size nor the smallest size fits under target + slack.
func (o *Optimizer) fillTier(tier tierPolicy, target float64) []model.Box {
	var placed []model.Box
	limit := target + tier.slack
	smallest := tier.sizes[0]

	var area float64
	for area < target {
		size := tier.draw(o.Rand.Float64())
		if area+size > limit {
			if area+smallest > limit {
				break
			}
			size = smallest
		}
		placed = append(placed, model.Box{Area: size, Category: tier.category})
		area += size
	}
	return placed
}
