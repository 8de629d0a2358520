package elev

import (
	"log/slog"
	"slices"

	"github.com/hkaab/elevator.manager/src/types"
)

// Floor holds the call buttons and the queue of passengers waiting on one floor.
type Floor struct {
	Number   int                `json:"number"`
	Waiting  []*types.Passenger `json:"waiting"`
	UpCall   bool               `json:"up_call"`
	DownCall bool               `json:"down_call"`
}

func NewFloor(number int) *Floor {
	return &Floor{Number: number, Waiting: []*types.Passenger{}}
}

// RegisterWaiting queues a passenger and raises the call in their direction of travel.
func (f *Floor) RegisterWaiting(p *types.Passenger) {
	f.Waiting = append(f.Waiting, p)
	f.raiseCall(p)
	slog.Info("Passenger waiting", "floor", f.Number, "passenger", p.ID, "destination", p.Destination)
}

func (f *Floor) ClearCalls() {
	f.UpCall = false
	f.DownCall = false
}

// RearmCalls raises calls again for passengers still waiting after a board pass.
func (f *Floor) RearmCalls() {
	for _, p := range f.Waiting {
		f.raiseCall(p)
	}
}

func (f *Floor) HasCall() bool {
	return f.UpCall || f.DownCall
}

// Remove takes a passenger off the waiting list. Unknown passengers are ignored.
func (f *Floor) Remove(p *types.Passenger) {
	if idx := slices.Index(f.Waiting, p); idx >= 0 {
		f.Waiting = slices.Delete(f.Waiting, idx, idx+1)
	}
}

// WaitingFor lists passengers that would board a cab travelling in dir, in queue order.
// DirNone matches everyone.
func (f *Floor) WaitingFor(dir types.Direction) []*types.Passenger {
	var result []*types.Passenger
	for _, p := range f.Waiting {
		if dir == types.DirNone || p.Heading() == dir {
			result = append(result, p)
		}
	}
	return result
}

func (f *Floor) raiseCall(p *types.Passenger) {
	switch {
	case p.Destination > f.Number:
		f.UpCall = true
	case p.Destination < f.Number:
		f.DownCall = true
	}
}
