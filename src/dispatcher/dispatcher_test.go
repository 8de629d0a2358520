package dispatcher

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hkaab/elevator.manager/src/config"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/hardware"
	"github.com/hkaab/elevator.manager/src/types"
)

var morning = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func building(public, private, service int) config.Building {
	return config.Building{
		MaxFloor: 10,
		Capacity: 8,
		Public:   config.CabGroup{Count: public, Music: true, Speaker: true},
		Private:  config.CabGroup{Count: private, Music: true, Speaker: true},
		Service:  config.CabGroup{Count: service},
	}
}

func defaultFlags() map[string]bool {
	return maps.Clone(config.Default().Features)
}

func newTestEngine(b config.Building, flags map[string]bool, now time.Time) (*Engine, *hardware.Sim) {
	hw := hardware.NewSim(0, 0)
	e := New(b, config.Default().OperatingHours, hw, features.NewSet(flags), WithClock(func() time.Time { return now }))
	return e, hw
}

func TestNew_AssignsIdsByType(t *testing.T) {
	e, _ := newTestEngine(building(2, 1, 1), defaultFlags(), morning)

	want := []types.ElevatorType{types.Public, types.Public, types.Private, types.Service}
	if len(e.elevators) != len(want) {
		t.Fatalf("Expected %d elevators, got %d", len(want), len(e.elevators))
	}
	for i, el := range e.elevators {
		if el.ID != i+1 || el.Type != want[i] {
			t.Errorf("Elevator %d: expected id %d type %v, got id %d type %v", i, i+1, want[i], el.ID, el.Type)
		}
		if el.Floor != config.GroundFloor || el.State != types.Idle {
			t.Errorf("Elevator %d should start idle at ground, got floor %d state %v", el.ID, el.Floor, el.State)
		}
	}
	if len(e.floors) != 11 {
		t.Errorf("Expected floors 0..10, got %d floors", len(e.floors))
	}
	if e.elevators[3].HasMusic {
		t.Errorf("Service cab should not be fitted with music")
	}
}

func TestProcessTick_SummonFromGroundReachesDestination(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)

	receipt, err := e.GeneralSummon(0, 5)
	if err != nil {
		t.Fatalf("GeneralSummon failed: %v", err)
	}
	if receipt != (Receipt{PassengerID: 1, ElevatorID: 1}) {
		t.Errorf("Unexpected receipt %+v", receipt)
	}

	e.ProcessTick()

	el := e.elevators[0]
	if el.Floor != 5 || el.Dir != types.DirUp || el.State != types.MovingUp {
		t.Errorf("Expected floor 5 Up MovingUp, got floor %d %v %v", el.Floor, el.Dir, el.State)
	}
	if len(el.Occupants) != 1 || !el.Occupants[0].InsideCab {
		t.Errorf("Passenger should be on board, got %v", el.Occupants)
	}
	if !el.MusicPlaying {
		t.Errorf("Music should play while moving")
	}
	if e.floors[0].HasCall() {
		t.Errorf("Ground floor calls should be cleared after boarding")
	}
}

func TestProcessTick_TwoDownwardSummons(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)

	for _, ride := range [][2]int{{6, 1}, {4, 1}} {
		if _, err := e.GeneralSummon(ride[0], ride[1]); err != nil {
			t.Fatalf("GeneralSummon(%d, %d) failed: %v", ride[0], ride[1], err)
		}
	}

	el := e.elevators[0]
	var visited []int
	for range 4 {
		e.ProcessTick()
		visited = append(visited, el.Floor)
	}
	if want := []int{4, 6, 4, 1}; !slices.Equal(visited, want) {
		t.Errorf("Expected floors %v, got %v", want, visited)
	}
	if el.Floor != 1 || el.Dir != types.DirDown || el.State != types.MovingDown {
		t.Errorf("Expected floor 1 Down MovingDown, got floor %d %v %v", el.Floor, el.Dir, el.State)
	}
	if len(el.Occupants) != 2 {
		t.Errorf("Expected both passengers on board, got %d", len(el.Occupants))
	}

	e.ProcessTick()
	if len(el.Occupants) != 0 || el.State != types.Idle || el.Dir != types.DirNone {
		t.Errorf("Expected empty idle cab after arrival, got %d occupants %v %v", len(el.Occupants), el.State, el.Dir)
	}
	if len(el.StopRequests) != 0 {
		t.Errorf("Expected no stop requests, got %v", el.StopRequests)
	}
}

func TestProcessTick_MoveFailureRetriesNextTick(t *testing.T) {
	e, hw := newTestEngine(building(1, 0, 0), defaultFlags(), morning)
	hw.FailNext(hardware.OpMove, 1)

	if _, err := e.GeneralSummon(0, 5); err != nil {
		t.Fatalf("GeneralSummon failed: %v", err)
	}
	e.ProcessTick()

	el := e.elevators[0]
	if el.Floor != 0 || el.State != types.Idle {
		t.Errorf("Expected cab to stay idle at 0, got floor %d %v", el.Floor, el.State)
	}
	if el.MusicPlaying {
		t.Errorf("Music should stop after a failed move")
	}

	e.ProcessTick()
	if el.Floor != 5 || el.State != types.MovingUp {
		t.Errorf("Expected retry to reach floor 5 MovingUp, got floor %d %v", el.Floor, el.State)
	}
	if n := hw.Count(hardware.OpMove); n != 2 {
		t.Errorf("Expected 2 move attempts, got %d", n)
	}
}

func TestProcessTick_DoorFailureLeavesPassengerWaiting(t *testing.T) {
	e, hw := newTestEngine(building(1, 0, 0), defaultFlags(), morning)
	hw.FailNext(hardware.OpOpenDoors, 1)

	if _, err := e.GeneralSummon(0, 5); err != nil {
		t.Fatalf("GeneralSummon failed: %v", err)
	}
	e.ProcessTick()

	el := e.elevators[0]
	if len(el.Occupants) != 0 || len(e.floors[0].Waiting) != 1 {
		t.Errorf("Passenger should still wait, got %d on board and %d waiting", len(el.Occupants), len(e.floors[0].Waiting))
	}
	if el.Floor != 0 || el.State != types.Idle {
		t.Errorf("Cab should rest at 0 after a door fault, got floor %d %v", el.Floor, el.State)
	}
	if hw.Count(hardware.OpMove) != 0 {
		t.Errorf("Cab should not move in the tick its doors failed")
	}

	e.ProcessTick()
	if el.Floor != 5 || len(el.Occupants) != 1 {
		t.Errorf("Expected passenger delivered towards 5 on the next tick, got floor %d with %d on board", el.Floor, len(el.Occupants))
	}
}

func TestProcessTick_CapacityIsRespected(t *testing.T) {
	b := building(1, 0, 0)
	b.Capacity = 2
	e, _ := newTestEngine(b, defaultFlags(), morning)

	for _, dest := range []int{3, 4, 5} {
		if _, err := e.GeneralSummon(0, dest); err != nil {
			t.Fatalf("GeneralSummon(0, %d) failed: %v", dest, err)
		}
	}
	e.ProcessTick()

	el := e.elevators[0]
	if len(el.Occupants) != 2 {
		t.Errorf("Expected 2 on board, got %d", len(el.Occupants))
	}
	ground := e.floors[0]
	if len(ground.Waiting) != 1 || !ground.UpCall {
		t.Errorf("Leftover passenger should keep the up call raised, got %d waiting up=%v", len(ground.Waiting), ground.UpCall)
	}
	if el.Floor != 3 {
		t.Errorf("Expected cab to head for the nearest drop-off at 3, got %d", el.Floor)
	}
}

func TestProcessTick_IdleCabAnswersUnassignedCall(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)

	if err := e.SetIssue(1, true); err != nil {
		t.Fatalf("SetIssue failed: %v", err)
	}
	receipt, err := e.GeneralSummon(6, 2)
	if err != nil {
		t.Fatalf("GeneralSummon failed: %v", err)
	}
	if receipt.ElevatorID != 0 {
		t.Fatalf("Expected no cab assigned, got %d", receipt.ElevatorID)
	}
	if err := e.SetIssue(1, false); err != nil {
		t.Fatalf("SetIssue failed: %v", err)
	}

	el := e.elevators[0]
	e.ProcessTick()
	if el.Floor != 6 || el.Dir != types.DirUp {
		t.Errorf("Expected idle cab to go to the call at 6, got floor %d %v", el.Floor, el.Dir)
	}
	e.ProcessTick()
	if el.Floor != 2 || el.State != types.MovingDown || len(el.Occupants) != 1 {
		t.Errorf("Expected cab to pick up and head to 2, got floor %d %v with %d on board", el.Floor, el.State, len(el.Occupants))
	}
}

func TestProcessTick_SkipsCabWithIssue(t *testing.T) {
	e, hw := newTestEngine(building(1, 0, 0), defaultFlags(), morning)
	if err := e.SetIssue(1, true); err != nil {
		t.Fatalf("SetIssue failed: %v", err)
	}
	e.elevators[0].AddStop(7)
	before := len(hw.Calls())

	e.ProcessTick()

	if after := len(hw.Calls()); after != before {
		t.Errorf("Expected no hardware calls for a faulted cab, got %d", after-before)
	}
	if e.elevators[0].Floor != 0 || e.elevators[0].State != types.OutOfService {
		t.Errorf("Faulted cab should not change, got floor %d %v", e.elevators[0].Floor, e.elevators[0].State)
	}
}

func TestQueue_AppliedInOrderOnNextTick(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)

	seq1, err := e.Submit(types.GeneralSummon{Origin: 0, Destination: 5})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	seq2, err := e.Submit(types.GeneralSummon{Origin: 0, Destination: 3})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if seq1 != 1 || seq2 != 2 {
		t.Errorf("Expected sequence ids 1, 2, got %d, %d", seq1, seq2)
	}
	if _, err := e.Submit(types.GeneralSummon{Origin: 3, Destination: 3}); err == nil {
		t.Errorf("Expected validation error for a ride to the same floor")
	}
	if _, err := e.Submit(types.SetIssue{ElevatorID: 9, HasIssue: true}); err == nil {
		t.Errorf("Expected unknown elevator error")
	}
	if n := e.Pending(); n != 2 {
		t.Errorf("Expected 2 pending commands, got %d", n)
	}
	if len(e.floors[0].Waiting) != 0 {
		t.Errorf("Queued commands must not touch state before the tick")
	}

	e.ProcessTick()

	if n := e.Pending(); n != 0 {
		t.Errorf("Expected queue drained, got %d", n)
	}
	el := e.elevators[0]
	var ids []int
	for _, p := range el.Occupants {
		ids = append(ids, p.ID)
	}
	if !slices.Equal(ids, []int{1, 2}) {
		t.Errorf("Expected passengers boarded in submit order [1 2], got %v", ids)
	}
	if el.Floor != 3 {
		t.Errorf("Expected first stop at 3, got %d", el.Floor)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)
	if _, err := e.GeneralSummon(2, 5); err != nil {
		t.Fatalf("GeneralSummon failed: %v", err)
	}
	if _, err := e.Submit(types.FireAlarm{Active: true}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	snap := e.Snapshot()
	if snap.MaxFloor != 10 || snap.Pending != 1 || snap.FireAlarmActive {
		t.Errorf("Unexpected snapshot header %+v", snap)
	}
	el, ok := snap.Elevator(1)
	if !ok || !slices.Equal(el.StopRequests, []int{2}) {
		t.Fatalf("Expected elevator 1 with stop [2], got %v (found=%v)", el.StopRequests, ok)
	}
	if _, ok := snap.Elevator(2); ok {
		t.Errorf("Elevator 2 should not exist")
	}

	snap.Elevators[0].StopRequests[0] = 7
	snap.Floors[2].Waiting[0].Destination = 9
	if e.elevators[0].StopRequests[0] != 2 {
		t.Errorf("Snapshot aliases stop requests")
	}
	if e.floors[2].Waiting[0].Destination != 5 {
		t.Errorf("Snapshot aliases waiting passengers")
	}
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	if _, err := e.Submit(types.GeneralSummon{Origin: 0, Destination: 4}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if el, _ := e.Snapshot().Elevator(1); el.Floor == 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Cab never reached floor 4")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func checkInvariants(t *testing.T, snap Snapshot) {
	t.Helper()
	for _, el := range snap.Elevators {
		if len(el.Occupants) > el.Capacity {
			t.Errorf("Elevator %d carries %d over capacity %d", el.ID, len(el.Occupants), el.Capacity)
		}
	}
	for _, f := range snap.Floors {
		goingUp := slices.ContainsFunc(f.Waiting, func(p *types.Passenger) bool { return p.Destination > f.Number })
		goingDown := slices.ContainsFunc(f.Waiting, func(p *types.Passenger) bool { return p.Destination < f.Number })
		if f.UpCall && !goingUp {
			t.Errorf("Floor %d has an up call but nobody waiting to go up", f.Number)
		}
		if f.DownCall && !goingDown {
			t.Errorf("Floor %d has a down call but nobody waiting to go down", f.Number)
		}
	}
}

func TestRun_ConcurrentProducersKeepInvariants(t *testing.T) {
	e, _ := newTestEngine(building(2, 1, 0), defaultFlags(), morning)
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		e.Run(ctx, time.Millisecond)
		close(runDone)
	}()

	stopChecking := make(chan struct{})
	checked := make(chan struct{})
	go func() {
		defer close(checked)
		for {
			checkInvariants(t, e.Snapshot())
			select {
			case <-stopChecking:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()

	var producers sync.WaitGroup
	for g := range 4 {
		producers.Add(1)
		go func() {
			defer producers.Done()
			for i := range 50 {
				origin := (g*3 + i) % 11
				destination := (origin + 1 + i%9) % 11
				if i%2 == 0 {
					if _, err := e.Submit(types.GeneralSummon{Origin: origin, Destination: destination}); err != nil {
						t.Errorf("Submit %d->%d failed: %v", origin, destination, err)
					}
					continue
				}
				if _, err := e.GeneralSummon(origin, destination); err != nil {
					t.Errorf("GeneralSummon %d->%d failed: %v", origin, destination, err)
				}
			}
		}()
	}
	producers.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for e.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := e.Pending(); n != 0 {
		t.Errorf("Queue never drained, %d commands pending", n)
	}

	close(stopChecking)
	<-checked
	cancel()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	checkInvariants(t, e.Snapshot())
}

func TestSubmit_DoesNotWaitForEngineLock(t *testing.T) {
	e, _ := newTestEngine(building(1, 0, 0), defaultFlags(), morning)

	e.mtx.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(types.GeneralSummon{Origin: 0, Destination: 3})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Submit failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Errorf("Submit blocked while a tick held the engine lock")
	}
	e.mtx.Unlock()

	if n := e.Pending(); n != 1 {
		t.Errorf("Expected 1 pending command, got %d", n)
	}
}
