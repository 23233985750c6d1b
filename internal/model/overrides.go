package model

import (
	"errors"
	"fmt"
)

// ErrUnknownOverride is returned for a field name outside OverrideFields.
var ErrUnknownOverride = errors.New("unknown override field")

// CalcMode decides whether manual overrides take part in pricing.
type CalcMode string

const (
	ModeAuto   CalcMode = "auto"
	ModeManual CalcMode = "manual"
)

// OverrideField names one of the derivable quantities a user may replace.
type OverrideField string

const (
	OverrideWhiteWall    OverrideField = "white_wall"
	OverrideGrayWall     OverrideField = "gray_wall"
	OverrideMesh         OverrideField = "mesh"
	OverrideKickPlate    OverrideField = "kick_plate"
	OverrideSingleDoors  OverrideField = "single_doors"
	OverrideDoubleDoors  OverrideField = "double_doors"
	OverrideRollers15    OverrideField = "rollers_15"
	OverrideRollers20    OverrideField = "rollers_20"
	OverrideElectroLocks OverrideField = "electro_locks"
	OverrideTotalBoxes   OverrideField = "total_boxes"
	OverrideNetArea      OverrideField = "net_area"
	OverrideCorridorArea OverrideField = "corridor_area"
)

// OverrideFields lists every overridable quantity in display order.
var OverrideFields = []OverrideField{
	OverrideWhiteWall, OverrideGrayWall, OverrideMesh, OverrideKickPlate,
	OverrideSingleDoors, OverrideDoubleDoors, OverrideRollers15, OverrideRollers20,
	OverrideElectroLocks, OverrideTotalBoxes, OverrideNetArea, OverrideCorridorArea,
}

// ManualOverrides holds optional replacements for derived quantities.
// A nil field means "use the computed value".
type ManualOverrides struct {
	WhiteWall    *float64 `json:"white_wall,omitempty"`
	GrayWall     *float64 `json:"gray_wall,omitempty"`
	Mesh         *float64 `json:"mesh,omitempty"`
	KickPlate    *float64 `json:"kick_plate,omitempty"`
	SingleDoors  *float64 `json:"single_doors,omitempty"`
	DoubleDoors  *float64 `json:"double_doors,omitempty"`
	Rollers15    *float64 `json:"rollers_15,omitempty"`
	Rollers20    *float64 `json:"rollers_20,omitempty"`
	ElectroLocks *float64 `json:"electro_locks,omitempty"`
	TotalBoxes   *float64 `json:"total_boxes,omitempty"`
	NetArea      *float64 `json:"net_area,omitempty"`
	CorridorArea *float64 `json:"corridor_area,omitempty"`
}

func (o *ManualOverrides) slot(f OverrideField) **float64 {
	switch f {
	case OverrideWhiteWall:
		return &o.WhiteWall
	case OverrideGrayWall:
		return &o.GrayWall
	case OverrideMesh:
		return &o.Mesh
	case OverrideKickPlate:
		return &o.KickPlate
	case OverrideSingleDoors:
		return &o.SingleDoors
	case OverrideDoubleDoors:
		return &o.DoubleDoors
	case OverrideRollers15:
		return &o.Rollers15
	case OverrideRollers20:
		return &o.Rollers20
	case OverrideElectroLocks:
		return &o.ElectroLocks
	case OverrideTotalBoxes:
		return &o.TotalBoxes
	case OverrideNetArea:
		return &o.NetArea
	case OverrideCorridorArea:
		return &o.CorridorArea
	}
	return nil
}

// Get returns the override for f, or nil when unset.
func (o ManualOverrides) Get(f OverrideField) *float64 {
	s := o.slot(f)
	if s == nil || *s == nil {
		return nil
	}
	v := **s
	return &v
}

// Set stores a copy of v for f; a nil v clears the override.
func (o *ManualOverrides) Set(f OverrideField, v *float64) error {
	s := o.slot(f)
	if s == nil {
		return fmt.Errorf("%w %q", ErrUnknownOverride, f)
	}
	if v == nil {
		*s = nil
		return nil
	}
	cp := *v
	*s = &cp
	return nil
}

// Clone returns a deep copy.
func (o ManualOverrides) Clone() ManualOverrides {
	var out ManualOverrides
	for _, f := range OverrideFields {
		_ = out.Set(f, o.Get(f))
	}
	return out
}

// Count returns how many overrides are set.
func (o ManualOverrides) Count() int {
	n := 0
	for _, f := range OverrideFields {
		if o.Get(f) != nil {
			n++
		}
	}
	return n
}

// Float returns a pointer to v, for building overrides inline.
func Float(v float64) *float64 {
	return &v
}
