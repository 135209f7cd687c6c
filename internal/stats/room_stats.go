// Package stats holds tally counters filled by level scans for summary screens.
package stats

// RoomStats counts doors by color (closed and open), rooms, secret rooms and levels.
// Callers increment fields directly while scanning; Clear is the only reset.
type RoomStats struct {
	YellowDoors, GreenDoors, BlueDoors, RedDoors, BlackDoors                     uint32
	OpenYellowDoors, OpenGreenDoors, OpenBlueDoors, OpenRedDoors, OpenBlackDoors uint32
	Rooms, Secrets, Levels                                                       uint32
}

// New returns zeroed stats.
func New() *RoomStats {
	s := &RoomStats{}
	s.Clear()
	return s
}

// Clear resets every counter to zero.
func (s *RoomStats) Clear() {
	*s = RoomStats{}
}

// Add accumulates other into s, e.g. to total per-level scans for a hold.
func (s *RoomStats) Add(other *RoomStats) {
	s.YellowDoors += other.YellowDoors
	s.GreenDoors += other.GreenDoors
	s.BlueDoors += other.BlueDoors
	s.RedDoors += other.RedDoors
	s.BlackDoors += other.BlackDoors
	s.OpenYellowDoors += other.OpenYellowDoors
	s.OpenGreenDoors += other.OpenGreenDoors
	s.OpenBlueDoors += other.OpenBlueDoors
	s.OpenRedDoors += other.OpenRedDoors
	s.OpenBlackDoors += other.OpenBlackDoors
	s.Rooms += other.Rooms
	s.Secrets += other.Secrets
	s.Levels += other.Levels
}

// Doors returns the number of closed doors of all colors.
func (s *RoomStats) Doors() uint32 {
	return s.YellowDoors + s.GreenDoors + s.BlueDoors + s.RedDoors + s.BlackDoors
}

// OpenDoors returns the number of open doors of all colors.
func (s *RoomStats) OpenDoors() uint32 {
	return s.OpenYellowDoors + s.OpenGreenDoors + s.OpenBlueDoors + s.OpenRedDoors + s.OpenBlackDoors
}
