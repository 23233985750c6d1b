package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrTierSum is returned when the small/medium/large percentages do not add up to 100.
var ErrTierSum = errors.New("tier percentages must sum to exactly 100")

// Efficiency bounds for the target usable share of the hall (percent).
const (
	MinTargetEfficiency     = 55
	MaxTargetEfficiency     = 85
	DefaultTargetEfficiency = 70
)

// HallShape selects which dimension set describes the hall footprint.
type HallShape string

const (
	ShapeRectangle HallShape = "rectangle"
	ShapeLShape    HallShape = "l-shape"
	ShapeCustom    HallShape = "custom"
)

// ParseHallShape maps user input to a HallShape. Matching is case-insensitive,
// so "L-shape" is accepted. Unknown values are returned unchanged.
func ParseHallShape(s string) HallShape {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangle", "rect":
		return ShapeRectangle
	case "l-shape", "lshape", "l":
		return ShapeLShape
	case "custom":
		return ShapeCustom
	default:
		return HallShape(s)
	}
}

func (s HallShape) String() string {
	return string(s)
}

// Hall holds the footprint dimensions. Only the fields relevant to Shape are used.
type Hall struct {
	Shape      HallShape `json:"shape"`
	Length     float64   `json:"length"`       // m (rectangle)
	Width      float64   `json:"width"`        // m (rectangle)
	ArmALength float64   `json:"arm_a_length"` // m (l-shape)
	ArmAWidth  float64   `json:"arm_a_width"`  // m (l-shape)
	ArmBLength float64   `json:"arm_b_length"` // m (l-shape)
	ArmBWidth  float64   `json:"arm_b_width"`  // m (l-shape)
	TotalArea  float64   `json:"total_area"`   // m² (custom)
}

// Options are the equipment switches of a configuration.
type Options struct {
	Mesh        bool `json:"mesh"`
	Soffit      bool `json:"soffit"`
	ElectroLock bool `json:"electro_locks"`
	RollerDoors bool `json:"roller_doors"` // rollers instead of double doors on large boxes
	Gate        bool `json:"gate"`
	Cameras     bool `json:"cameras"`
	Lighting    bool `json:"lighting"`
}

// Configuration is the full input set of one planning run.
type Configuration struct {
	Hall          Hall    `json:"hall"`
	SystemHeight  float64 `json:"system_height"`  // mm
	DoorHeight    float64 `json:"door_height"`    // mm, display only
	CorridorWidth float64 `json:"corridor_width"` // mm

	TargetEfficiency int `json:"target_efficiency"` // %

	SmallPercent  int `json:"small_percent"`
	MediumPercent int `json:"medium_percent"`
	LargePercent  int `json:"large_percent"`

	Options  Options        `json:"options"`
	Prices   PriceList      `json:"prices"`
	CashFlow CashFlowParams `json:"cash_flow"`
}

// DefaultConfiguration returns the configuration a new project starts with.
func DefaultConfiguration() Configuration {
	return Configuration{
		Hall: Hall{
			Shape:      ShapeRectangle,
			Length:     30,
			Width:      20,
			ArmALength: 20,
			ArmAWidth:  10,
			ArmBLength: 15,
			ArmBWidth:  10,
			TotalArea:  600,
		},
		SystemHeight:     3000,
		DoorHeight:       2130,
		CorridorWidth:    1400,
		TargetEfficiency: DefaultTargetEfficiency,
		SmallPercent:     50,
		MediumPercent:    30,
		LargePercent:     20,
		Options: Options{
			Mesh:        true,
			ElectroLock: true,
			Cameras:     true,
			Lighting:    true,
		},
		Prices:   DefaultPrices(),
		CashFlow: DefaultCashFlowParams(),
	}
}

// ClampEfficiency bounds a target efficiency to [55, 85]. Zero means unset
// and maps to the default.
func ClampEfficiency(v int) int {
	if v == 0 {
		return DefaultTargetEfficiency
	}
	if v < MinTargetEfficiency {
		return MinTargetEfficiency
	}
	if v > MaxTargetEfficiency {
		return MaxTargetEfficiency
	}
	return v
}

// Normalize applies the input-boundary rules: shape parsing and efficiency clamping.
func (c Configuration) Normalize() Configuration {
	c.Hall.Shape = ParseHallShape(string(c.Hall.Shape))
	c.TargetEfficiency = ClampEfficiency(c.TargetEfficiency)
	return c
}

// TierSum returns the sum of the three tier percentages.
func (c Configuration) TierSum() int {
	return c.SmallPercent + c.MediumPercent + c.LargePercent
}

// Validate checks the preconditions of plan generation.
func (c Configuration) Validate() error {
	if sum := c.TierSum(); sum != 100 {
		return &TierSumError{Sum: sum}
	}
	return nil
}

// TierSumError reports the offending sum. It matches ErrTierSum with errors.Is.
type TierSumError struct {
	Sum int
}

func (e *TierSumError) Error() string {
	return fmt.Sprintf("%s (got %d)", ErrTierSum.Error(), e.Sum)
}

func (e *TierSumError) Is(target error) bool {
	return target == ErrTierSum
}

// TierRatios returns the tier shares as fractions in small, medium, large order.
func (c Configuration) TierRatios() (small, medium, large float64) {
	return float64(c.SmallPercent) / 100, float64(c.MediumPercent) / 100, float64(c.LargePercent) / 100
}

// SystemHeightM returns the wall system height in meters.
func (c Configuration) SystemHeightM() float64 {
	return c.SystemHeight / 1000
}

// CorridorWidthM returns the corridor width in meters.
func (c Configuration) CorridorWidthM() float64 {
	return c.CorridorWidth / 1000
}

// Project is the input document for a planning run. It never carries computed results.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Config    Configuration   `json:"config"`
	Mode      CalcMode        `json:"mode"`
	Overrides ManualOverrides `json:"overrides"`
	Seed      int64           `json:"seed,omitempty"` // 0 = random layout each run
}

func NewProject() Project {
	return Project{
		ID:     uuid.New().String()[:8],
		Name:   "Untitled",
		Config: DefaultConfiguration(),
		Mode:   ModeAuto,
	}
}
