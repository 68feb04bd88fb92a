package model

// Orientation is the facing direction on the 1-D track.
type Orientation string

const (
	Forward  Orientation = "forward"
	Backward Orientation = "backward"
)

// RobotPose is the robot's position on the track and the way it faces.
type RobotPose struct {
	Position    float64     `json:"position"`
	Orientation Orientation `json:"orientation"`
}

// InitialPose is the robot standing at the gate facing the tables.
func InitialPose() RobotPose {
	return RobotPose{Position: 0, Orientation: Forward}
}

// CafeLayout places the fixed landmarks on the track.
type CafeLayout struct {
	Gate    float64 `envconfig:"CAFE_GATE" default:"0" json:"gate"`
	Counter float64 `envconfig:"CAFE_COUNTER" default:"11" json:"counter"`
	Tables  int     `envconfig:"CAFE_TABLES" default:"10" json:"tables"`
}

// DefaultLayout is gate at 0, tables at 1..10 and the counter at 11.
func DefaultLayout() CafeLayout {
	return CafeLayout{Gate: 0, Counter: 11, Tables: 10}
}

// TablePosition returns the x coordinate of table n (1-based).
func (l CafeLayout) TablePosition(n int) float64 {
	return l.Gate + float64(n)
}
