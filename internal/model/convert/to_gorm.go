// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/holeinone/coursecal/internal/geo"
	"github.com/holeinone/coursecal/internal/model"
	"github.com/holeinone/coursecal/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// position3DToPoint converts a core.Position3D to an XYZ geom.Point. The
// point's XY lies on the course plane (world X, world Z) like the footprint,
// and its Z carries the world height.
func position3DToPoint(p core.Position3D) (geom.Point, error) {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Z}, Z: p.Y, Type: geom.DimXYZ}
	return geom.NewPoint(coords)
}

// waypointsToJSON converts the waypoint list to datatypes.JSON for DB storage.
func waypointsToJSON(waypoints []core.Position3D) (datatypes.JSON, error) {
	if len(waypoints) == 0 {
		return datatypes.JSON("[]"), nil
	}
	data, err := json.Marshal(waypoints)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// CoreToCourse converts a core.Course to a GORM model.Course. The footprint
// polygon is derived from the waypoints; fewer than three waypoints, or an
// outline that crosses itself, leave it empty.
func CoreToCourse(c core.Course) (model.Course, error) {
	waypoints, err := waypointsToJSON(c.Waypoints)
	if err != nil {
		return model.Course{}, fmt.Errorf("encoding waypoints: %w", err)
	}
	ballSpawn, err := position3DToPoint(c.BallSpawn)
	if err != nil {
		return model.Course{}, fmt.Errorf("encoding ball spawn: %w", err)
	}
	hole, err := position3DToPoint(c.Hole)
	if err != nil {
		return model.Course{}, fmt.Errorf("encoding hole: %w", err)
	}

	m := model.Course{
		ID:               c.ID,
		CreatedAt:        c.CreatedAt,
		SessionID:        c.SessionID,
		Complexity:       c.Complexity,
		Waypoints:        waypoints,
		BallSpawn:        ballSpawn,
		Hole:             hole,
		Elevation:        c.Elevation,
		ElevationLatched: c.ElevationLatched,
		Area:             c.Area,
	}

	if len(c.Waypoints) >= 3 {
		fp, err := geo.NewFootprint(geo.Planar(c.Waypoints))
		if err != nil {
			return model.Course{}, fmt.Errorf("building footprint: %w", err)
		}
		// A crossing ring would fail WKB validation when the row is scanned
		// back, so only simple footprints are stored.
		if fp.Simple {
			m.Footprint = fp.Polygon
		}
	}
	return m, nil
}
