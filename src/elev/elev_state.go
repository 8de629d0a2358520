package elev

import (
	"log/slog"
	"slices"

	"github.com/hkaab/elevator.manager/src/types"
	"github.com/hkaab/elevator.manager/src/utils"
)

func (e *Elevator) IsFull() bool {
	return len(e.Occupants) >= e.Capacity
}

// Board puts a passenger in the cab and registers their destination.
// Returns false without changing anything when the cab is full.
func (e *Elevator) Board(p *types.Passenger) bool {
	if e.IsFull() {
		slog.Info("Cab full, passenger not boarded", "elevator", e.ID, "passenger", p.ID)
		return false
	}
	e.Occupants = append(e.Occupants, p)
	p.InsideCab = true
	e.AddStop(p.Destination)
	slog.Info("Passenger boarded",
		"elevator", e.ID,
		"passenger", p.ID,
		"load", len(e.Occupants),
		"capacity", e.Capacity)
	return true
}

// Alight removes a passenger from the cab. The destination stays requested while
// another occupant still rides to it. Returns false if p was not on board.
func (e *Elevator) Alight(p *types.Passenger) bool {
	idx := slices.Index(e.Occupants, p)
	if idx < 0 {
		return false
	}
	e.Occupants = slices.Delete(e.Occupants, idx, idx+1)
	p.InsideCab = false
	if !e.DestinedFor(p.Destination) {
		e.DropStop(p.Destination)
	}
	slog.Info("Passenger alighted",
		"elevator", e.ID,
		"passenger", p.ID,
		"floor", e.Floor,
		"load", len(e.Occupants))
	return true
}

// SetIssue applies a confirmed mechanical issue change.
func (e *Elevator) SetIssue(hasIssue bool) {
	e.HasIssue = hasIssue
	if hasIssue {
		e.State = types.OutOfService
		slog.Error("Elevator out of service", "elevator", e.ID, "type", e.Type)
		return
	}
	e.State = types.Idle
	slog.Info("Elevator issue resolved", "elevator", e.ID, "type", e.Type, "state", e.State)
}

// DestinedFor reports whether any occupant rides to floor.
func (e *Elevator) DestinedFor(floor int) bool {
	return slices.ContainsFunc(e.Occupants, func(p *types.Passenger) bool {
		return p.Destination == floor
	})
}

func (e *Elevator) AddStop(floor int) {
	e.StopRequests = utils.InsertSorted(e.StopRequests, floor)
}

func (e *Elevator) DropStop(floor int) {
	e.StopRequests = utils.RemoveSorted(e.StopRequests, floor)
}

// ResetStops replaces every stop request with the given floors.
func (e *Elevator) ResetStops(floors ...int) {
	e.StopRequests = []int{}
	for _, f := range floors {
		e.AddStop(f)
	}
}

// CommitMove records a successful hardware move to floor.
func (e *Elevator) CommitMove(floor int) {
	e.Dir = types.Towards(e.Floor, floor)
	e.State = types.MovingState(e.Dir)
	e.Floor = floor
}

// Rest parks the cab with no direction.
func (e *Elevator) Rest() {
	e.State = types.Idle
	e.Dir = types.DirNone
}
