package dispatcher

import (
	"log/slog"

	"github.com/hkaab/elevator.manager/src/elev"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/types"
)

// ProcessTick applies queued commands, then gives every cab one control step in id order.
func (e *Engine) ProcessTick() {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.drainQueue()
	for _, elevator := range e.elevators {
		e.step(elevator)
	}
}

// step runs the decision pass for a single cab:
//  1. Cabs with a mechanical issue are left alone.
//  2. The fire alarm overrides everything else.
//  3. Service cabs head home outside service hours.
//  4. Passengers get on and off at the current floor.
//  5. The cab moves towards its next destination.
//  6. An idle cab goes after an open floor call.
func (e *Engine) step(elevator *elev.Elevator) {
	switch {
	case elevator.HasIssue:
		slog.Debug("Skipping elevator with issue", "elevator", elevator.ID)
		return
	case e.fireAlarm:
		e.fireDescent(elevator)
		return
	case e.serviceAfterHours(elevator):
		e.returnToGround(elevator)
		return
	}

	floor := e.floors[elevator.Floor]
	if elevator.Turnaround(floor) {
		slog.Debug("Direction reversed", "elevator", elevator.ID, "floor", floor.Number, "dir", elevator.Dir)
	}
	if elevator.ShouldStopAt(floor) {
		e.stopMusic(elevator)
		if !e.alightPass(elevator, floor) || !e.boardPass(elevator, floor) {
			elevator.State = types.Idle
			return
		}
	}
	if !elevator.DestinedFor(floor.Number) && !floor.HasCall() {
		elevator.DropStop(floor.Number)
	}

	if len(elevator.Occupants) > 0 || len(elevator.StopRequests) > 0 {
		target := elevator.NextDestination()
		if elevator.Type == types.Service && e.flags.IsEnabled(features.DirectionalTimeRestriction) &&
			!e.hours.UpDirection.Contains(e.now()) {
			target = clampUpward(elevator, target)
		}
		if target != elevator.Floor {
			e.moveTo(elevator, target)
			return
		}
		e.stopMusic(elevator)
		elevator.Rest()
		return
	}
	e.dispatchIdle(elevator)
}

// alightPass lets out everyone bound for the current floor. Returns false on a door fault.
func (e *Engine) alightPass(elevator *elev.Elevator, floor *elev.Floor) bool {
	var leaving []*types.Passenger
	for _, p := range elevator.Occupants {
		if p.Destination == floor.Number {
			leaving = append(leaving, p)
		}
	}
	if len(leaving) == 0 {
		return true
	}
	if !e.openDoors(elevator) {
		return false
	}
	for _, p := range leaving {
		elevator.Alight(p)
	}
	return e.closeDoors(elevator)
}

// boardPass takes waiting passengers going the cab's way, or anyone if it is idle,
// until the cab is full. Returns false on a door fault.
func (e *Engine) boardPass(elevator *elev.Elevator, floor *elev.Floor) bool {
	dir := elevator.Dir
	if elevator.State == types.Idle {
		dir = types.DirNone
	}
	boarding := floor.WaitingFor(dir)
	if len(boarding) == 0 || elevator.IsFull() {
		return true
	}
	if !e.openDoors(elevator) {
		return false
	}
	for _, p := range boarding {
		if !elevator.Board(p) {
			break
		}
		floor.Remove(p)
		if elevator.Type == types.Private && e.flags.IsEnabled(features.CameraSnapshot) {
			slog.Info("Camera snapshot taken", "elevator", elevator.ID, "passenger", p.ID, "floor", floor.Number)
		}
	}
	floor.ClearCalls()
	floor.RearmCalls()
	return e.closeDoors(elevator)
}

func (e *Engine) openDoors(elevator *elev.Elevator) bool {
	if !e.hw.OpenDoors(elevator.ID, elevator.Floor) {
		slog.Error("Doors failed to open", "elevator", elevator.ID, "floor", elevator.Floor)
		return false
	}
	if elevator.HasSpeaker {
		e.hw.AnnounceFloor(elevator.ID, elevator.Floor)
	}
	return true
}

func (e *Engine) closeDoors(elevator *elev.Elevator) bool {
	if !e.hw.CloseDoors(elevator.ID, elevator.Floor) {
		slog.Error("Doors failed to close", "elevator", elevator.ID, "floor", elevator.Floor)
		return false
	}
	return true
}

// moveTo travels to floor in one hardware move. On failure the cab rests where it is
// and the same target is worked out again next tick.
func (e *Engine) moveTo(elevator *elev.Elevator, floor int) {
	if elevator.HasMusic && !elevator.MusicPlaying && e.hw.PlayMusic(elevator.ID) {
		elevator.MusicPlaying = true
	}
	dir := types.Towards(elevator.Floor, floor)
	if !e.hw.Move(elevator.ID, elevator.Floor, floor, dir) {
		slog.Error("Move failed", "elevator", elevator.ID, "from", elevator.Floor, "to", floor)
		elevator.State = types.Idle
		e.stopMusic(elevator)
		return
	}
	slog.Debug("Elevator moved", "elevator", elevator.ID, "from", elevator.Floor, "to", floor, "dir", dir)
	elevator.CommitMove(floor)
}

func (e *Engine) stopMusic(elevator *elev.Elevator) {
	if !elevator.MusicPlaying {
		return
	}
	if e.hw.StopMusic(elevator.ID) {
		elevator.MusicPlaying = false
	}
}
