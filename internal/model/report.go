package model

import "github.com/shopspring/decimal"

// LineKey identifies a priced line of the cost report.
type LineKey string

const (
	LineWhiteWall    LineKey = "white_wall"
	LineGrayWall     LineKey = "gray_wall"
	LineMesh         LineKey = "mesh"
	LineKickPlate    LineKey = "kick_plate"
	LineSingleDoors  LineKey = "single_doors"
	LineDoubleDoors  LineKey = "double_doors"
	LineRollers15    LineKey = "rollers_15"
	LineRollers20    LineKey = "rollers_20"
	LineElectroLocks LineKey = "electro_locks"
	LineSoffit       LineKey = "soffit"
	LineGate         LineKey = "gate"
	LineCameras      LineKey = "cameras"
	LineLamps        LineKey = "lamps"
)

// LineKeys lists all cost lines in report order.
var LineKeys = []LineKey{
	LineWhiteWall, LineGrayWall, LineMesh, LineKickPlate,
	LineSingleDoors, LineDoubleDoors, LineRollers15, LineRollers20,
	LineElectroLocks, LineSoffit, LineGate, LineCameras, LineLamps,
}

// Label returns the display name of a cost line.
func (k LineKey) Label() string {
	switch k {
	case LineWhiteWall:
		return "Front walls (white)"
	case LineGrayWall:
		return "Partition walls (gray)"
	case LineMesh:
		return "Security mesh"
	case LineKickPlate:
		return "Kick plate"
	case LineSingleDoors:
		return "Single doors"
	case LineDoubleDoors:
		return "Double doors"
	case LineRollers15:
		return "Roller doors 1.5 m"
	case LineRollers20:
		return "Roller doors 2.0 m"
	case LineElectroLocks:
		return "Electronic locks"
	case LineSoffit:
		return "Soffit"
	case LineGate:
		return "Entry gate"
	case LineCameras:
		return "Cameras"
	case LineLamps:
		return "Lamps"
	default:
		return string(k)
	}
}

// Units used by cost lines.
const (
	UnitSquareMeter = "m²"
	UnitRunningM    = "m"
	UnitPiece       = "pcs"
)

// CostLineItem is one priced material or fixture line.
type CostLineItem struct {
	Key        LineKey `json:"key"`
	Quantity   float64 `json:"quantity"` // as displayed; area and length lines are rounded to 0.1
	Unit       string  `json:"unit"`
	UnitPrice  float64 `json:"unit_price"`
	Total      float64 `json:"total"`
	Formula    string  `json:"formula"` // human readable, documentation only
	Overridden bool    `json:"overridden"`
}

// Quantities are the raw derived values feeding the cost lines.
type Quantities struct {
	Boxes      BoxCounts `json:"boxes"`
	TotalBoxes float64   `json:"total_boxes"`
	NetArea    float64   `json:"net_area"`
	GrossArea  float64   `json:"gross_area"`

	CorridorArea        float64 `json:"corridor_area"`
	FrontWallLength     float64 `json:"front_wall_length"`
	PartitionWallLength float64 `json:"partition_wall_length"`
	CorridorLength      float64 `json:"corridor_length"`
	SystemHeightM       float64 `json:"system_height_m"`
	DoorHeightM         float64 `json:"door_height_m"`

	SingleDoors float64 `json:"single_doors"`
	DoubleDoors float64 `json:"double_doors"`
	Rollers15   float64 `json:"rollers_15"`
	Rollers20   float64 `json:"rollers_20"`

	TotalDoorWidth     float64 `json:"total_door_width"`
	TotalDoorsArea     float64 `json:"total_doors_area"`
	FrontWallGrossArea float64 `json:"front_wall_gross_area"`
	WhiteWallArea      float64 `json:"white_wall_area"` // may be negative
	GrayWallArea       float64 `json:"gray_wall_area"`
	KickPlateLength    float64 `json:"kick_plate_length"`
	MeshArea           float64 `json:"mesh_area"`
	ElectroLocks       float64 `json:"electro_locks"`
	SoffitLength       float64 `json:"soffit_length"`
	Cameras            float64 `json:"cameras"`
	Lamps              float64 `json:"lamps"`
	Gates              float64 `json:"gates"`

	Options Options `json:"options"` // switches the quantities were derived with
}

// CostReport is the priced bill of materials.
type CostReport struct {
	Mode       CalcMode                 `json:"mode"`
	Items      map[LineKey]CostLineItem `json:"items"`
	GrandTotal float64                  `json:"grand_total"`
	Quantities Quantities               `json:"quantities"`
}

// Item returns the line for key.
func (r CostReport) Item(key LineKey) CostLineItem {
	return r.Items[key]
}

// OrderedItems returns the lines in report order.
func (r CostReport) OrderedItems() []CostLineItem {
	items := make([]CostLineItem, 0, len(r.Items))
	for _, k := range LineKeys {
		if it, ok := r.Items[k]; ok {
			items = append(items, it)
		}
	}
	return items
}

// RoundedTotal returns the grand total rounded down to full thousands,
// as quoted in summaries.
func (r CostReport) RoundedTotal() float64 {
	return RoundDownThousands(r.GrandTotal).InexactFloat64()
}

// RoundDownThousands truncates an amount to full thousands.
func RoundDownThousands(v float64) decimal.Decimal {
	thousand := decimal.NewFromInt(1000)
	return decimal.NewFromFloat(v).Div(thousand).Floor().Mul(thousand)
}

// Clone returns a deep copy of the report.
func (r CostReport) Clone() CostReport {
	out := r
	out.Items = make(map[LineKey]CostLineItem, len(r.Items))
	for k, v := range r.Items {
		out.Items[k] = v
	}
	return out
}
