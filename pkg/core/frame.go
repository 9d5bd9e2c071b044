// pkg/core/frame.go
package core

// PoseUpdate is one marker sighting from the tracking feed.
type PoseUpdate struct {
	Name     string        `json:"name"`
	Position Position3D    `json:"position"`
	State    TrackingState `json:"state"`
}

// Tracked reports whether the estimator currently has the marker.
func (u PoseUpdate) Tracked() bool {
	return u.State == Tracking
}

// FrameBatch is everything the feed reported for one rendered frame.
// Removed carries only names.
type FrameBatch struct {
	Frame   uint64       `json:"frame"`
	Added   []PoseUpdate `json:"added,omitempty"`
	Updated []PoseUpdate `json:"updated,omitempty"`
	Removed []string     `json:"removed,omitempty"`
}

// Empty reports whether the batch carries no events.
func (b FrameBatch) Empty() bool {
	return len(b.Added) == 0 && len(b.Updated) == 0 && len(b.Removed) == 0
}
