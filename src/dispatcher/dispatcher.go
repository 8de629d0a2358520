package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/hkaab/elevator.manager/src/config"
	"github.com/hkaab/elevator.manager/src/elev"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/hardware"
	"github.com/hkaab/elevator.manager/src/timer"
	"github.com/hkaab/elevator.manager/src/types"
	"github.com/hkaab/elevator.manager/src/utils"
)

// Engine owns every floor and cab in the building. All state changes go through
// its methods, serialised by one lock.
type Engine struct {
	mtx       sync.Mutex
	floors    []*elev.Floor
	elevators []*elev.Elevator
	maxFloor  int
	fireAlarm bool
	lastID    int

	hw    hardware.Port
	flags features.Flags
	hours config.OperatingHours
	now   func() time.Time
	queue cmdBuffer
}

type Option func(*Engine)

// WithClock replaces time.Now for operating-hour checks and command timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds the floors 0..MaxFloor and the cabs, public first, then private, then service.
// Cab ids start at 1.
func New(building config.Building, hours config.OperatingHours, hw hardware.Port, flags features.Flags, opts ...Option) *Engine {
	e := &Engine{
		maxFloor: building.MaxFloor,
		hw:       hw,
		flags:    flags,
		hours:    hours,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	utils.ForEachIndex(config.GroundFloor, building.MaxFloor, func(floor int) {
		e.floors = append(e.floors, elev.NewFloor(floor))
	})

	groups := []struct {
		elevType types.ElevatorType
		group    config.CabGroup
	}{
		{types.Public, building.Public},
		{types.Private, building.Private},
		{types.Service, building.Service},
	}
	for _, g := range groups {
		for range g.group.Count {
			id := len(e.elevators) + 1
			e.elevators = append(e.elevators, elev.NewElevator(id, g.elevType, building.Capacity, elev.Features{
				HasMusic:   g.group.Music,
				HasSpeaker: g.group.Speaker,
			}))
		}
	}
	slog.Info("Engine initialized", "floors", len(e.floors), "elevators", len(e.elevators))
	return e
}

// Run ticks the engine every interval until ctx is cancelled. A tick in progress always finishes.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	slog.Info("Dispatcher started", "interval", interval)
	timer.Periodic(ctx, interval, e.ProcessTick)
	slog.Info("Dispatcher stopped")
}

// Submit queues a command for the next tick. Floor ranges, elevator ids and the
// pool and access gates are checked right away; a request that passes is checked
// again when the tick applies it. Submit never takes the engine lock.
func (e *Engine) Submit(payload types.CmdPayload) (uint64, error) {
	if err := e.precheck(payload); err != nil {
		return 0, err
	}
	cmd := e.queue.push(payload, e.now())
	slog.Debug("Command queued", "seq", cmd.Seq, "kind", cmd.Kind())
	return cmd.Seq, nil
}

// Pending reports how many commands wait for the next tick.
func (e *Engine) Pending() int {
	return e.queue.len()
}

// Snapshot returns a deep copy of every cab and floor. An entry that fails to copy
// is logged and left zero.
func (e *Engine) Snapshot() Snapshot {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	snap := Snapshot{
		Elevators:       make([]elev.Elevator, len(e.elevators)),
		Floors:          make([]elev.Floor, len(e.floors)),
		FireAlarmActive: e.fireAlarm,
		MaxFloor:        e.maxFloor,
		Pending:         e.queue.len(),
	}
	for i, elevator := range e.elevators {
		if err := deepcopy.Copy(&snap.Elevators[i], *elevator); err != nil {
			slog.Error("Snapshot copy failed", "elevator", elevator.ID, "err", err)
		}
	}
	for i, floor := range e.floors {
		if err := deepcopy.Copy(&snap.Floors[i], *floor); err != nil {
			slog.Error("Snapshot copy failed", "floor", floor.Number, "err", err)
		}
	}
	return snap
}

func (e *Engine) FireAlarmActive() bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.fireAlarm
}

// apply executes one queued command. The caller holds the lock.
func (e *Engine) apply(cmd types.Command) error {
	switch p := cmd.Payload.(type) {
	case types.GeneralSummon:
		_, err := e.generalSummon(p.Origin, p.Destination)
		return err
	case types.PrivateSummon:
		_, err := e.privateSummon(p.ElevatorID, p.Origin, p.Destination)
		return err
	case types.ServiceSummon:
		_, err := e.serviceSummon(p.Origin, p.Destination, p.HasAccessCard)
		return err
	case types.FireAlarm:
		e.setFireAlarm(p.Active)
		return nil
	case types.SetIssue:
		return e.setIssue(p.ElevatorID, p.HasIssue)
	case types.EmergencyCall:
		return e.emergencyCall(p.ElevatorID)
	}
	return fmt.Errorf("%w: unsupported command %T", ErrInvalidRequest, cmd.Payload)
}

func (e *Engine) drainQueue() {
	for _, cmd := range e.queue.drain() {
		if err := e.apply(cmd); err != nil {
			logRejection(err, "Queued command rejected", "seq", cmd.Seq, "kind", cmd.Kind(), "queuedFor", e.now().Sub(cmd.ReceivedAt))
		}
	}
}

func (e *Engine) precheck(payload types.CmdPayload) error {
	switch p := payload.(type) {
	case types.GeneralSummon:
		return e.validateRide(p.Origin, p.Destination)
	case types.PrivateSummon:
		if e.find(p.ElevatorID) == nil {
			return fmt.Errorf("%w: %d", ErrUnknownElevator, p.ElevatorID)
		}
		if err := e.validateRide(p.Origin, p.Destination); err != nil {
			return err
		}
		if !e.flags.IsEnabled(features.PrivateElevators) {
			return fmt.Errorf("%w: private elevators are disabled", ErrGateDenied)
		}
	case types.ServiceSummon:
		if err := e.validateRide(p.Origin, p.Destination); err != nil {
			return err
		}
		return e.serviceGate(p.Origin, p.Destination, p.HasAccessCard)
	case types.SetIssue:
		if e.find(p.ElevatorID) == nil {
			return fmt.Errorf("%w: %d", ErrUnknownElevator, p.ElevatorID)
		}
	case types.EmergencyCall:
		if e.find(p.ElevatorID) == nil {
			return fmt.Errorf("%w: %d", ErrUnknownElevator, p.ElevatorID)
		}
	case types.FireAlarm:
	default:
		return fmt.Errorf("%w: unsupported command %T", ErrInvalidRequest, payload)
	}
	return nil
}

func (e *Engine) validateRide(origin, destination int) error {
	if origin < config.GroundFloor || origin > e.maxFloor || destination < config.GroundFloor || destination > e.maxFloor {
		return fmt.Errorf("%w: floors must be within %d..%d, got %d->%d", ErrInvalidRequest, config.GroundFloor, e.maxFloor, origin, destination)
	}
	if origin == destination {
		return fmt.Errorf("%w: origin and destination are both %d", ErrInvalidRequest, origin)
	}
	return nil
}

// find looks a cab up by id. The cab list never changes after New, so no lock is needed.
func (e *Engine) find(id int) *elev.Elevator {
	for _, elevator := range e.elevators {
		if elevator.ID == id {
			return elevator
		}
	}
	return nil
}

func (e *Engine) newPassenger(origin, destination int, hasCard bool) *types.Passenger {
	e.lastID++
	return &types.Passenger{
		ID:            e.lastID,
		Origin:        origin,
		Destination:   destination,
		HasAccessCard: hasCard,
	}
}

// logRejection picks the log level from the error class.
func logRejection(err error, msg string, args ...any) {
	args = append(args, "err", err)
	switch {
	case errors.Is(err, ErrGateDenied):
		slog.Info(msg, args...)
	case errors.Is(err, ErrHardware):
		slog.Error(msg, args...)
	default:
		slog.Warn(msg, args...)
	}
}
