// Package analysis connects the planner to an external floor-plan
// understanding service. The planner only sees the Analyzer and Advisor
// interfaces; transport and vendor details stay in this package.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ErrNoJSON is returned when the service answer contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in analysis response")

// Image is one uploaded floor-plan page.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// HallDimensions are the outer hall measurements read from a plan.
type HallDimensions struct {
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
}

// Extraction is the partial result of a floor-plan analysis. Every field
// is optional; nil means the service could not determine it.
type Extraction struct {
	WhiteWallArea   *float64       `json:"white_wall_area,omitempty"`
	GrayWallArea    *float64       `json:"gray_wall_area,omitempty"`
	MeshArea        *float64       `json:"mesh_area,omitempty"`
	KickPlateLength *float64       `json:"kick_plate_length,omitempty"`
	SingleDoors     *float64       `json:"single_doors,omitempty"`
	DoubleDoors     *float64       `json:"double_doors,omitempty"`
	RollerDoors     *float64       `json:"roller_doors,omitempty"`
	TotalBoxes      *float64       `json:"total_boxes,omitempty"`
	SmallBoxes      *float64       `json:"small_boxes,omitempty"`
	MediumBoxes     *float64       `json:"medium_boxes,omitempty"`
	LargeBoxes      *float64       `json:"large_boxes,omitempty"`
	NetArea         *float64       `json:"net_area,omitempty"`
	CorridorArea    *float64       `json:"corridor_area,omitempty"`
	GrossArea       *float64       `json:"gross_area,omitempty"`
	Hall            HallDimensions `json:"hall"`
	Confidence      *float64       `json:"confidence,omitempty"` // 0-100
	Notes           string         `json:"notes,omitempty"`
}

// Analyzer extracts quantities from floor-plan images.
type Analyzer interface {
	AnalyzeFloorPlan(ctx context.Context, images []Image) (Extraction, error)
}

// Advisor produces a free-text review of a generated project.
type Advisor interface {
	Advise(ctx context.Context, s Summary) (string, error)
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// DecodeExtraction pulls the JSON object out of a model answer and reads
// every field it can. Numbers and numeric strings are accepted; anything
// else is skipped. Keys match in camelCase or snake_case.
func DecodeExtraction(text string) (Extraction, error) {
	block := jsonObject.FindString(text)
	if block == "" {
		return Extraction{}, ErrNoJSON
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Extraction{}, fmt.Errorf("decode analysis response: %w", err)
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[canonicalKey(k)] = v
	}

	var e Extraction
	targets := map[string]**float64{
		"whitewallarea":   &e.WhiteWallArea,
		"graywallarea":    &e.GrayWallArea,
		"mesharea":        &e.MeshArea,
		"kickplatelength": &e.KickPlateLength,
		"singledoors":     &e.SingleDoors,
		"doubledoors":     &e.DoubleDoors,
		"rollerdoors":     &e.RollerDoors,
		"totalboxes":      &e.TotalBoxes,
		"smallboxes":      &e.SmallBoxes,
		"mediumboxes":     &e.MediumBoxes,
		"largeboxes":      &e.LargeBoxes,
		"netarea":         &e.NetArea,
		"corridorarea":    &e.CorridorArea,
		"grossarea":       &e.GrossArea,
		"confidence":      &e.Confidence,
	}
	for key, dst := range targets {
		*dst = number(fields[key])
	}

	if dims, ok := fields["halldimensions"].(map[string]any); ok {
		e.Hall.Length = number(dims["length"])
		e.Hall.Width = number(dims["width"])
	}
	if notes, ok := fields["notes"].(string); ok {
		e.Notes = strings.TrimSpace(notes)
	}
	return e, nil
}

func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

// number converts a decoded JSON value to a float, or nil when it is not numeric.
func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return nil
		}
		return &n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ApplyTo sets every present field as a manual override and returns how
// many were applied. Negative values are skipped as malformed. Roller doors
// from a plan are booked as 1.5 m rollers.
func (e Extraction) ApplyTo(o *model.ManualOverrides) int {
	pairs := []struct {
		field model.OverrideField
		value *float64
	}{
		{model.OverrideWhiteWall, e.WhiteWallArea},
		{model.OverrideGrayWall, e.GrayWallArea},
		{model.OverrideMesh, e.MeshArea},
		{model.OverrideKickPlate, e.KickPlateLength},
		{model.OverrideSingleDoors, e.SingleDoors},
		{model.OverrideDoubleDoors, e.DoubleDoors},
		{model.OverrideRollers15, e.RollerDoors},
		{model.OverrideTotalBoxes, e.TotalBoxes},
		{model.OverrideNetArea, e.NetArea},
		{model.OverrideCorridorArea, e.CorridorArea},
	}
	n := 0
	for _, p := range pairs {
		if p.value == nil || *p.value < 0 {
			continue
		}
		_ = o.Set(p.field, p.value)
		n++
	}
	return n
}

// ApplyHall updates the rectangle dimensions of hall with any measured
// length or width. Zero values are ignored.
func (e Extraction) ApplyHall(hall *model.Hall) {
	if e.Hall.Length != nil && *e.Hall.Length > 0 {
		hall.Length = *e.Hall.Length
	}
	if e.Hall.Width != nil && *e.Hall.Width > 0 {
		hall.Width = *e.Hall.Width
	}
}
