package engine

import (
	"math"

	"github.com/piwi3910/boxplanner/internal/model"
)

// BoxDepth is the depth assumed for every box, in meters.
const BoxDepth = 3.0

// DeriveGeometry converts a box list into wall and corridor lengths,
// assuming two rows of boxes facing a centre corridor.
//
// The back wall is taken as half the front run doubled for the two rows,
// so it always equals the front wall length. Costs are calibrated against
// this approximation.
func DeriveGeometry(boxes []model.Box, hall model.Hall, grossArea float64) model.Geometry {
	var front float64
	for _, b := range boxes {
		front += b.FrontWidth(BoxDepth)
	}

	boxesPerRow := (len(boxes) + 1) / 2
	partitionsPerRow := max(0, boxesPerRow-1)
	sidePartitions := float64(partitionsPerRow*2) * BoxDepth
	backWall := (front / 2) * 2

	return model.Geometry{
		BoxDepth:            BoxDepth,
		FrontWallLength:     round1(front),
		PartitionWallLength: round1(sidePartitions + backWall),
		CorridorLength:      roundHalfUp(corridorLength(hall, grossArea)),
	}
}

func corridorLength(hall model.Hall, grossArea float64) float64 {
	switch hall.Shape {
	case model.ShapeRectangle:
		return hall.Length
	case model.ShapeLShape:
		return hall.ArmALength + hall.ArmBLength
	default:
		return math.Sqrt(grossArea) * 1.2
	}
}
