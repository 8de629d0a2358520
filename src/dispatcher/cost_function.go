package dispatcher

import (
	"slices"

	"github.com/hkaab/elevator.manager/src/elev"
	"github.com/hkaab/elevator.manager/src/types"
	"github.com/hkaab/elevator.manager/src/utils"
)

// closestAvailable finds the cab of one type that should take a summon at floor.
//   - skips cabs that are out of service, in emergency stop or full
//   - lowest distance wins, ties go to the lowest id
//   - nobody is available while the fire alarm sounds
func (e *Engine) closestAvailable(elevType types.ElevatorType, floor int) *elev.Elevator {
	if e.fireAlarm {
		return nil
	}
	var best *elev.Elevator
	for _, elevator := range e.elevators {
		if elevator.Type != elevType || !elevator.Available() {
			continue
		}
		if best == nil || utils.Abs(elevator.Floor-floor) < utils.Abs(best.Floor-floor) {
			best = elevator
		}
	}
	return best
}

// claimedByOther reports whether another working cab already plans to stop at floor.
// A full cab cannot pick anyone up, so its stops do not count.
func (e *Engine) claimedByOther(self *elev.Elevator, floor int) bool {
	for _, elevator := range e.elevators {
		if elevator == self || elevator.HasIssue || elevator.IsFull() {
			continue
		}
		if slices.Contains(elevator.StopRequests, floor) {
			return true
		}
	}
	return false
}

// nextCall chooses a floor with an open call for an idle cab, the current floor excluded.
//  1. Travelling up: lowest up call above, else highest down call below.
//  2. Travelling down: highest down call below, else lowest up call above.
//  3. Otherwise, or when nothing matched: nearest call, ties to the lower floor.
func (e *Engine) nextCall(elevator *elev.Elevator) (*elev.Floor, bool) {
	var calls []*elev.Floor
	for _, floor := range e.floors {
		if floor.HasCall() && floor.Number != elevator.Floor && !e.claimedByOther(elevator, floor.Number) {
			calls = append(calls, floor)
		}
	}
	if len(calls) == 0 {
		return nil, false
	}

	lowestUpAbove := func() *elev.Floor {
		for _, f := range calls {
			if f.Number > elevator.Floor && f.UpCall {
				return f
			}
		}
		return nil
	}
	highestDownBelow := func() *elev.Floor {
		for i := len(calls) - 1; i >= 0; i-- {
			if calls[i].Number < elevator.Floor && calls[i].DownCall {
				return calls[i]
			}
		}
		return nil
	}

	var target *elev.Floor
	switch elevator.Dir {
	case types.DirUp:
		if target = lowestUpAbove(); target == nil {
			target = highestDownBelow()
		}
	case types.DirDown:
		if target = highestDownBelow(); target == nil {
			target = lowestUpAbove()
		}
	}
	if target != nil {
		return target, true
	}

	target = calls[0]
	for _, f := range calls[1:] {
		if utils.Abs(f.Number-elevator.Floor) < utils.Abs(target.Number-elevator.Floor) {
			target = f
		}
	}
	return target, true
}
