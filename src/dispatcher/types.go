package dispatcher

import (
	"errors"

	"github.com/hkaab/elevator.manager/src/elev"
)

var (
	// ErrInvalidRequest covers floors outside the building and rides that go nowhere.
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnknownElevator = errors.New("unknown elevator")
	// ErrIneligible is returned when the chosen cab cannot take the request.
	ErrIneligible = errors.New("elevator not eligible")
	// ErrGateDenied is returned when a feature flag, access card or operating window refuses the request.
	ErrGateDenied = errors.New("request denied")
	ErrHardware   = errors.New("hardware failure")
)

// Receipt describes an accepted summon. ElevatorID is 0 when no cab was free and
// the passenger waits on the floor for the next idle cab.
type Receipt struct {
	PassengerID int `json:"passenger_id"`
	ElevatorID  int `json:"elevator_id"`
}

// Snapshot is a deep copy of the engine state at one instant.
type Snapshot struct {
	Elevators       []elev.Elevator `json:"elevators"`
	Floors          []elev.Floor    `json:"floors"`
	FireAlarmActive bool            `json:"fire_alarm_active"`
	MaxFloor        int             `json:"max_floor"`
	Pending         int             `json:"pending_commands"`
}

// Elevator finds a cab in the snapshot by id.
func (s Snapshot) Elevator(id int) (elev.Elevator, bool) {
	for _, e := range s.Elevators {
		if e.ID == id {
			return e, true
		}
	}
	return elev.Elevator{}, false
}
