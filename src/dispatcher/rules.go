package dispatcher

import (
	"log/slog"

	"github.com/hkaab/elevator.manager/src/config"
	"github.com/hkaab/elevator.manager/src/elev"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/types"
)

// forceDescent puts a cab under fire alarm control.
func forceDescent(elevator *elev.Elevator) {
	elevator.State = types.EmergencyStop
	elevator.Dir = types.DirDown
	elevator.ResetStops(config.GroundFloor)
}

// fireDescent lowers the cab one floor per tick and evacuates it at the ground floor.
// The cab stays in emergency stop until the doors opened there.
func (e *Engine) fireDescent(elevator *elev.Elevator) {
	if elevator.Floor > config.GroundFloor {
		to := elevator.Floor - 1
		if !e.hw.Move(elevator.ID, elevator.Floor, to, types.DirDown) {
			slog.Error("Fire descent move failed", "elevator", elevator.ID, "floor", elevator.Floor)
			return
		}
		elevator.Floor = to
		return
	}
	if elevator.State != types.EmergencyStop {
		return
	}
	if !e.evacuate(elevator, false) {
		return
	}
	elevator.ResetStops()
	e.stopMusic(elevator)
	elevator.Rest()
	slog.Info("Elevator evacuated", "elevator", elevator.ID)
}

func (e *Engine) serviceAfterHours(elevator *elev.Elevator) bool {
	return elevator.Type == types.Service &&
		e.flags.IsEnabled(features.TimeBasedServiceRestriction) &&
		!e.hours.Service.Contains(e.now())
}

// returnToGround parks a service cab at the ground floor and lets its passengers out.
func (e *Engine) returnToGround(elevator *elev.Elevator) {
	if elevator.Floor != config.GroundFloor {
		elevator.ResetStops(config.GroundFloor)
		e.moveTo(elevator, config.GroundFloor)
		return
	}
	if len(elevator.Occupants) > 0 && !e.evacuate(elevator, true) {
		elevator.State = types.Idle
		return
	}
	elevator.ResetStops()
	e.stopMusic(elevator)
	elevator.Rest()
}

// evacuate opens the doors and lets every occupant out.
func (e *Engine) evacuate(elevator *elev.Elevator, closeDoors bool) bool {
	if !e.openDoors(elevator) {
		return false
	}
	for len(elevator.Occupants) > 0 {
		elevator.Alight(elevator.Occupants[0])
	}
	if closeDoors {
		return e.closeDoors(elevator)
	}
	return true
}

// clampUpward keeps a service cab from travelling up outside the up window.
// It goes to the highest target below, else the ground floor, else nowhere.
func clampUpward(elevator *elev.Elevator, target int) int {
	if target <= elevator.Floor {
		return target
	}
	clamped := elevator.Floor
	below := elevator.Targets()
	for i := len(below) - 1; i >= 0; i-- {
		if below[i] < elevator.Floor {
			clamped = below[i]
			break
		}
	}
	if clamped == elevator.Floor && elevator.Floor != config.GroundFloor {
		clamped = config.GroundFloor
	}
	slog.Info("Upward travel denied outside up hours", "elevator", elevator.ID, "floor", elevator.Floor, "wanted", target, "target", clamped)
	return clamped
}

// dispatchIdle sends a cab with nothing to do after an open floor call.
func (e *Engine) dispatchIdle(elevator *elev.Elevator) {
	e.stopMusic(elevator)
	floor, ok := e.nextCall(elevator)
	if !ok {
		elevator.Rest()
		return
	}
	slog.Debug("Idle elevator answering call", "elevator", elevator.ID, "floor", floor.Number)
	elevator.AddStop(floor.Number)
	e.moveTo(elevator, floor.Number)
}
