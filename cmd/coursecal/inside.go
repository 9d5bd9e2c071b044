package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/holeinone/coursecal/internal/geo"
	"github.com/holeinone/coursecal/pkg/core"
	"github.com/spf13/viper"
)

// insideResult is printed by the inside command.
type insideResult struct {
	CourseID  uint            `json:"courseId"`
	SessionID string          `json:"sessionId"`
	Point     core.Position3D `json:"point"`
	Inside    bool            `json:"inside"`
}

func runInside(coords string, out io.Writer) error {
	p, err := geo.Position3DFromString(coords)
	if err != nil {
		return fmt.Errorf("%w: %q", err, coords)
	}

	backend, err := initStorage(viper.GetString("logsDir"), Logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	course, err := backend.LatestCourse()
	if err != nil {
		return err
	}

	res, err := courseContains(course, p)
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(res)
}

// courseContains rebuilds the playable-area mesh of a saved course and
// tests p against it.
func courseContains(course *core.Course, p core.Position3D) (insideResult, error) {
	res := insideResult{CourseID: course.ID, SessionID: course.SessionID, Point: p}
	if len(course.Waypoints) != course.Complexity {
		return res, fmt.Errorf("course %d has %d of %d waypoints", course.ID, len(course.Waypoints), course.Complexity)
	}

	mesh, ok := geo.BuildMesh(course.Waypoints)
	if !ok {
		return res, fmt.Errorf("course %d has a degenerate outline", course.ID)
	}
	res.Inside = mesh.Contains(p)
	return res, nil
}
