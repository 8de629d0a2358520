package hardware

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hkaab/elevator.manager/src/types"
)

// Sim is a software stand-in for the cab controllers.
//   - every action sleeps for Delay before answering
//   - actions fail at random with FailureRate, except emergency calls and announcements
//   - FailNext scripts deterministic failures, which take precedence over chance
//   - every action is recorded and can be read back with Calls
type Sim struct {
	FailureRate float64
	Delay       time.Duration

	mtx      sync.Mutex
	rnd      *rand.Rand
	scripted map[Op]int
	calls    []Call
}

func NewSim(failureRate float64, delay time.Duration) *Sim {
	return &Sim{
		FailureRate: failureRate,
		Delay:       delay,
		rnd:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		scripted:    make(map[Op]int),
	}
}

// FailNext makes the next n calls of op fail.
func (s *Sim) FailNext(op Op, n int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.scripted[op] += n
}

// Calls returns a copy of every recorded action in call order.
func (s *Sim) Calls() []Call {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns how many times op was called, successful or not.
func (s *Sim) Count(op Op) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *Sim) Reset() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.calls = nil
	s.scripted = make(map[Op]int)
}

func (s *Sim) OpenDoors(elevatorID, floor int) bool {
	ok := s.act(Call{Op: OpOpenDoors, ElevatorID: elevatorID, To: floor}, true)
	logResult(ok, "Doors opened", "Door open failed", "elevator", elevatorID, "floor", floor)
	return ok
}

func (s *Sim) CloseDoors(elevatorID, floor int) bool {
	ok := s.act(Call{Op: OpCloseDoors, ElevatorID: elevatorID, To: floor}, true)
	logResult(ok, "Doors closed", "Door close failed", "elevator", elevatorID, "floor", floor)
	return ok
}

func (s *Sim) Move(elevatorID, from, to int, dir types.Direction) bool {
	ok := s.act(Call{Op: OpMove, ElevatorID: elevatorID, From: from, To: to}, true)
	logResult(ok, "Cab moved", "Cab move failed", "elevator", elevatorID, "from", from, "to", to, "direction", dir)
	return ok
}

func (s *Sim) SetIssue(elevatorID int, hasIssue bool) bool {
	ok := s.act(Call{Op: OpSetIssue, ElevatorID: elevatorID, Flag: hasIssue}, true)
	logResult(ok, "Issue state sent", "Issue state failed", "elevator", elevatorID, "hasIssue", hasIssue)
	return ok
}

func (s *Sim) ActivateFireAlarm() bool {
	ok := s.act(Call{Op: OpActivateFireAlarm, Flag: true}, true)
	logResult(ok, "Fire alarm sounding", "Fire alarm activation failed")
	return ok
}

func (s *Sim) DeactivateFireAlarm() bool {
	ok := s.act(Call{Op: OpDeactivateFireAlarm}, true)
	logResult(ok, "Fire alarm silenced", "Fire alarm deactivation failed")
	return ok
}

func (s *Sim) PlayMusic(elevatorID int) bool {
	ok := s.act(Call{Op: OpPlayMusic, ElevatorID: elevatorID}, true)
	logResult(ok, "Music playing", "Play music failed", "elevator", elevatorID)
	return ok
}

func (s *Sim) StopMusic(elevatorID int) bool {
	ok := s.act(Call{Op: OpStopMusic, ElevatorID: elevatorID}, true)
	logResult(ok, "Music stopped", "Stop music failed", "elevator", elevatorID)
	return ok
}

func (s *Sim) ActivateEmergencyCall(elevatorID int) bool {
	ok := s.act(Call{Op: OpEmergencyCall, ElevatorID: elevatorID}, false)
	logResult(ok, "Emergency call sent to control center", "Emergency call failed", "elevator", elevatorID)
	return ok
}

func (s *Sim) AnnounceFloor(elevatorID, floor int) bool {
	ok := s.act(Call{Op: OpAnnounceFloor, ElevatorID: elevatorID, To: floor}, false)
	logResult(ok, "Floor announced", "Floor announcement failed", "elevator", elevatorID, "floor", floor)
	return ok
}

// act records the call and decides its outcome. The delay is served outside the lock.
func (s *Sim) act(call Call, mayFail bool) bool {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	call.OK = true
	switch {
	case s.scripted[call.Op] > 0:
		s.scripted[call.Op]--
		call.OK = false
	case mayFail && s.FailureRate > 0:
		call.OK = s.rnd.Float64() >= s.FailureRate
	}
	s.calls = append(s.calls, call)
	return call.OK
}

func logResult(ok bool, success, failure string, args ...any) {
	if ok {
		slog.Debug(success, args...)
		return
	}
	slog.Error(failure, args...)
}
