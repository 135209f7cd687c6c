package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomStats_Clear(t *testing.T) {
	s := New()
	s.YellowDoors = 3
	s.OpenBlackDoors = 2
	s.Rooms = 40
	s.Secrets = 1
	s.Levels = 5

	s.Clear()
	assert.Equal(t, RoomStats{}, *s)
}

func TestRoomStats_AddAndTotals(t *testing.T) {
	level1 := &RoomStats{YellowDoors: 2, RedDoors: 1, OpenGreenDoors: 4, Rooms: 10, Levels: 1}
	level2 := &RoomStats{BlackDoors: 1, OpenGreenDoors: 1, Secrets: 2, Rooms: 8, Levels: 1}

	total := New()
	total.Add(level1)
	total.Add(level2)

	assert.Equal(t, uint32(4), total.Doors())
	assert.Equal(t, uint32(5), total.OpenDoors())
	assert.Equal(t, uint32(18), total.Rooms)
	assert.Equal(t, uint32(2), total.Secrets)
	assert.Equal(t, uint32(2), total.Levels)
}

func TestRoomStats_Wraps(t *testing.T) {
	s := &RoomStats{Rooms: math.MaxUint32}
	s.Rooms++
	assert.Equal(t, uint32(0), s.Rooms)
}
