package convert

import (
	"encoding/json"
	"fmt"

	"github.com/holeinone/coursecal/internal/model"
	"github.com/holeinone/coursecal/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToPosition3D converts a geom.Point stored by position3DToPoint back to
// a core.Position3D
func pointToPosition3D(p geom.Point) core.Position3D {
	coord, ok := p.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: coord.XY.X, Y: coord.Z, Z: coord.XY.Y}
}

// CourseToCore converts a GORM Course to a core.Course.
func CourseToCore(m model.Course) (core.Course, error) {
	var waypoints []core.Position3D
	if len(m.Waypoints) > 0 {
		if err := json.Unmarshal(m.Waypoints, &waypoints); err != nil {
			return core.Course{}, fmt.Errorf("decoding waypoints of course %d: %w", m.ID, err)
		}
	}

	return core.Course{
		ID:               m.ID,
		SessionID:        m.SessionID,
		CreatedAt:        m.CreatedAt,
		Complexity:       m.Complexity,
		Waypoints:        waypoints,
		BallSpawn:        pointToPosition3D(m.BallSpawn),
		Hole:             pointToPosition3D(m.Hole),
		Elevation:        m.Elevation,
		ElevationLatched: m.ElevationLatched,
		Area:             m.Area,
	}, nil
}
