package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Course{},
}

// Course is a saved calibration. Positions are stored as WKB so the same
// schema works on SQLite and Postgres without PostGIS.
type Course struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_course_created_at"`
	SessionID string    `json:"sessionId" gorm:"size:36;index:idx_course_session_id"`

	Complexity int        `json:"complexity"`
	BallSpawn  geom.Point `json:"ballSpawn" gorm:"type:bytea"`
	Hole       geom.Point `json:"hole" gorm:"type:bytea"`

	// Waypoints holds the ordered waypoint positions as a JSON array of {x,y,z}.
	Waypoints datatypes.JSON `json:"waypoints"`

	// Footprint is the waypoint outline on the X/Z plane.
	Footprint geom.Polygon `json:"footprint" gorm:"type:bytea"`

	Elevation        float64 `json:"elevation"`
	ElevationLatched bool    `json:"elevationLatched" gorm:"default:false"`
	Area             float64 `json:"area"` // square metres
}

func (*Course) TableName() string {
	return "courses"
}
