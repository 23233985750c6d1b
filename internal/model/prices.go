package model

import (
	"fmt"
	"strings"
)

// PriceList holds the unit prices used by the cost engine (PLN).
type PriceList struct {
	WhiteWall   float64 `json:"white_wall"`   // per m²
	GrayWall    float64 `json:"gray_wall"`    // per m²
	Mesh        float64 `json:"mesh"`         // per m²
	KickPlate   float64 `json:"kick_plate"`   // per running m
	DoorSingle  float64 `json:"door_single"`  // per piece
	DoorDouble  float64 `json:"door_double"`  // per piece
	Roller15    float64 `json:"roller_15"`    // per piece
	Roller20    float64 `json:"roller_20"`    // per piece
	ElectroLock float64 `json:"electro_lock"` // per piece
	Soffit      float64 `json:"soffit"`       // per running m
	Gate        float64 `json:"gate"`         // per piece
	Camera      float64 `json:"camera"`       // per piece
	Lamp        float64 `json:"lamp"`         // per piece
}

// DefaultPrices returns the reference price list.
func DefaultPrices() PriceList {
	return PriceList{
		WhiteWall:   110,
		GrayWall:    84,
		Mesh:        50,
		KickPlate:   81,
		DoorSingle:  780,
		DoorDouble:  1560,
		Roller15:    1700,
		Roller20:    1800,
		ElectroLock: 550,
		Soffit:      80,
		Gate:        15000,
		Camera:      500,
		Lamp:        350,
	}
}

// PriceKeys lists the canonical price keys in display order.
var PriceKeys = []string{
	"white_wall", "gray_wall", "mesh", "kick_plate",
	"door_single", "door_double", "roller_15", "roller_20",
	"electro_lock", "soffit", "gate", "camera", "lamp",
}

func (p *PriceList) field(key string) *float64 {
	switch normalizeKey(key) {
	case "white_wall", "whitewall":
		return &p.WhiteWall
	case "gray_wall", "graywall", "grey_wall":
		return &p.GrayWall
	case "mesh":
		return &p.Mesh
	case "kick_plate", "kickplate":
		return &p.KickPlate
	case "door_single", "doorsingle", "single_door":
		return &p.DoorSingle
	case "door_double", "doordouble", "double_door":
		return &p.DoorDouble
	case "roller_15", "roller15":
		return &p.Roller15
	case "roller_20", "roller20":
		return &p.Roller20
	case "electro_lock", "electrolock":
		return &p.ElectroLock
	case "soffit":
		return &p.Soffit
	case "gate":
		return &p.Gate
	case "camera":
		return &p.Camera
	case "lamp":
		return &p.Lamp
	}
	return nil
}

// Get returns the price stored under key.
func (p PriceList) Get(key string) (float64, bool) {
	f := p.field(key)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// Set stores value under key. Keys are matched case-insensitively and
// spaces or dashes are treated as underscores.
func (p *PriceList) Set(key string, value float64) error {
	f := p.field(key)
	if f == nil {
		return fmt.Errorf("unknown price key %q", key)
	}
	*f = value
	return nil
}

func normalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, " ", "_")
	k = strings.ReplaceAll(k, "-", "_")
	return k
}

// CanonicalPriceKey returns the PriceKeys entry that key refers to.
func CanonicalPriceKey(key string) (string, bool) {
	var p PriceList
	target := p.field(key)
	if target == nil {
		return "", false
	}
	for _, k := range PriceKeys {
		if p.field(k) == target {
			return k, true
		}
	}
	return "", false
}
