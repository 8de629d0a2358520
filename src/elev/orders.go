package elev

import (
	"slices"

	"github.com/hkaab/elevator.manager/src/types"
	"github.com/hkaab/elevator.manager/src/utils"
)

// Targets returns every floor the cab still has to visit, ascending and without duplicates.
func (e *Elevator) Targets() []int {
	targets := slices.Clone(e.StopRequests)
	for _, p := range e.Occupants {
		targets = utils.InsertSorted(targets, p.Destination)
	}
	return targets
}

// ShouldStopAt checks whether the cab must open at the floor it is standing on.
func (e *Elevator) ShouldStopAt(floor *Floor) bool {
	return e.DestinedFor(e.Floor) ||
		(e.Dir == types.DirUp && floor.UpCall) ||
		(e.Dir == types.DirDown && floor.DownCall) ||
		(e.State == types.Idle && floor.HasCall())
}

// Turnaround reverses the cab when nothing lies ahead of it and the floor it stands
// on only has a call for the opposite direction. Returns true if direction changed.
func (e *Elevator) Turnaround(floor *Floor) bool {
	switch e.Dir {
	case types.DirUp:
		if floor.DownCall && !floor.UpCall && !e.targetsAbove() {
			e.Dir = types.DirDown
			return true
		}
	case types.DirDown:
		if floor.UpCall && !floor.DownCall && !e.targetsBelow() {
			e.Dir = types.DirUp
			return true
		}
	}
	return false
}

// NextDestination picks the floor the cab travels to next.
//  1. Moving up: nearest target above, else nearest below.
//  2. Moving down: nearest target below, else nearest above.
//  3. No direction: nearest target overall, a pickup beating a drop-off at equal distance.
//
// The current floor is returned when there is nowhere to go.
func (e *Elevator) NextDestination() int {
	targets := e.Targets()
	if len(targets) == 0 {
		return e.Floor
	}

	switch e.Dir {
	case types.DirUp:
		if floor, ok := nearestAbove(targets, e.Floor); ok {
			return floor
		}
		if floor, ok := nearestBelow(targets, e.Floor); ok {
			return floor
		}
		return nearest(targets, e.Floor)
	case types.DirDown:
		if floor, ok := nearestBelow(targets, e.Floor); ok {
			return floor
		}
		if floor, ok := nearestAbove(targets, e.Floor); ok {
			return floor
		}
		return nearest(targets, e.Floor)
	}
	return e.nearestIdle(targets)
}

func (e *Elevator) nearestIdle(targets []int) int {
	best, bestDist, bestIsDropOff := e.Floor, 0, false
	for _, floor := range targets {
		if floor == e.Floor {
			continue
		}
		dist := utils.Abs(floor - e.Floor)
		isDropOff := e.DestinedFor(floor)
		switch {
		case best == e.Floor,
			dist < bestDist,
			dist == bestDist && bestIsDropOff && !isDropOff:
			best, bestDist, bestIsDropOff = floor, dist, isDropOff
		}
	}
	return best
}

func (e *Elevator) targetsAbove() bool {
	_, ok := nearestAbove(e.Targets(), e.Floor)
	return ok
}

func (e *Elevator) targetsBelow() bool {
	_, ok := nearestBelow(e.Targets(), e.Floor)
	return ok
}

// nearestAbove expects floors sorted ascending.
func nearestAbove(floors []int, current int) (int, bool) {
	for _, floor := range floors {
		if floor > current {
			return floor, true
		}
	}
	return 0, false
}

// nearestBelow expects floors sorted ascending.
func nearestBelow(floors []int, current int) (int, bool) {
	for i := len(floors) - 1; i >= 0; i-- {
		if floors[i] < current {
			return floors[i], true
		}
	}
	return 0, false
}

// nearest breaks distance ties towards the lower floor.
func nearest(floors []int, current int) int {
	best := floors[0]
	for _, floor := range floors[1:] {
		if utils.Abs(floor-current) < utils.Abs(best-current) {
			best = floor
		}
	}
	return best
}
