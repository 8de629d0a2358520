package dispatcher

import (
	"fmt"
	"log/slog"

	"github.com/hkaab/elevator.manager/src/elev"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/types"
)

// GeneralSummon registers a passenger and assigns the closest public cab, or a
// private one when the public pool has nothing free. With no cab free the passenger
// just waits on the floor and the idle pass picks the call up later.
func (e *Engine) GeneralSummon(origin, destination int) (Receipt, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.generalSummon(origin, destination)
}

func (e *Engine) PrivateSummon(elevatorID, origin, destination int) (Receipt, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.privateSummon(elevatorID, origin, destination)
}

func (e *Engine) ServiceSummon(origin, destination int, hasAccessCard bool) (Receipt, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.serviceSummon(origin, destination, hasAccessCard)
}

// SetFireAlarm switches the building alarm. The engine state flips even when the
// physical alarm does not respond.
func (e *Engine) SetFireAlarm(active bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.setFireAlarm(active)
}

// SetIssue reports or clears a mechanical issue. The cab changes only after the
// hardware confirmed it.
func (e *Engine) SetIssue(elevatorID int, hasIssue bool) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.setIssue(elevatorID, hasIssue)
}

func (e *Engine) EmergencyCall(elevatorID int) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.emergencyCall(elevatorID)
}

func (e *Engine) generalSummon(origin, destination int) (Receipt, error) {
	if err := e.validateRide(origin, destination); err != nil {
		return Receipt{}, err
	}
	p := e.newPassenger(origin, destination, false)
	e.floors[origin].RegisterWaiting(p)

	receipt := Receipt{PassengerID: p.ID}
	var elevator *elev.Elevator
	if e.flags.IsEnabled(features.PublicElevators) {
		elevator = e.closestAvailable(types.Public, origin)
	}
	if elevator == nil && e.flags.IsEnabled(features.PrivateElevators) {
		elevator = e.closestAvailable(types.Private, origin)
	}
	if elevator == nil {
		slog.Warn("No elevator available, passenger waits on floor", "passenger", p.ID, "floor", origin)
		return receipt, nil
	}
	elevator.AddStop(origin)
	receipt.ElevatorID = elevator.ID
	slog.Info("Summon assigned", "passenger", p.ID, "elevator", elevator.ID, "type", elevator.Type, "from", origin, "to", destination)
	return receipt, nil
}

func (e *Engine) privateSummon(elevatorID, origin, destination int) (Receipt, error) {
	if err := e.validateRide(origin, destination); err != nil {
		return Receipt{}, err
	}
	if !e.flags.IsEnabled(features.PrivateElevators) {
		return Receipt{}, fmt.Errorf("%w: private elevators are disabled", ErrGateDenied)
	}
	elevator := e.find(elevatorID)
	if elevator == nil {
		return Receipt{}, fmt.Errorf("%w: %d", ErrUnknownElevator, elevatorID)
	}
	switch {
	case elevator.Type != types.Private:
		return Receipt{}, fmt.Errorf("%w: elevator %d is %s", ErrIneligible, elevatorID, elevator.Type)
	case e.fireAlarm:
		return Receipt{}, fmt.Errorf("%w: fire alarm active", ErrIneligible)
	case !elevator.Available():
		return Receipt{}, fmt.Errorf("%w: elevator %d is %s with %d/%d on board",
			ErrIneligible, elevatorID, elevator.State, len(elevator.Occupants), elevator.Capacity)
	}

	p := e.newPassenger(origin, destination, false)
	e.floors[origin].RegisterWaiting(p)
	elevator.AddStop(origin)
	slog.Info("Private summon assigned", "passenger", p.ID, "elevator", elevator.ID, "from", origin, "to", destination)
	return Receipt{PassengerID: p.ID, ElevatorID: elevator.ID}, nil
}

func (e *Engine) serviceSummon(origin, destination int, hasAccessCard bool) (Receipt, error) {
	if err := e.validateRide(origin, destination); err != nil {
		return Receipt{}, err
	}
	if err := e.serviceGate(origin, destination, hasAccessCard); err != nil {
		slog.Info("Service summon denied", "from", origin, "to", destination, "err", err)
		return Receipt{}, err
	}

	p := e.newPassenger(origin, destination, hasAccessCard)
	e.floors[origin].RegisterWaiting(p)

	receipt := Receipt{PassengerID: p.ID}
	elevator := e.closestAvailable(types.Service, origin)
	if elevator == nil {
		slog.Warn("No service elevator available, passenger waits on floor", "passenger", p.ID, "floor", origin)
		return receipt, nil
	}
	elevator.AddStop(origin)
	receipt.ElevatorID = elevator.ID
	slog.Info("Service summon assigned", "passenger", p.ID, "elevator", elevator.ID, "from", origin, "to", destination)
	return receipt, nil
}

func (e *Engine) serviceGate(origin, destination int, hasAccessCard bool) error {
	if !e.flags.IsEnabled(features.ServiceElevators) {
		return fmt.Errorf("%w: service elevators are disabled", ErrGateDenied)
	}
	if e.flags.IsEnabled(features.AccessCardRequired) && !hasAccessCard {
		return fmt.Errorf("%w: access card required", ErrGateDenied)
	}
	if !e.flags.IsEnabled(features.TimeBasedServiceRestriction) {
		return nil
	}
	now := e.now()
	if !e.hours.Service.Contains(now) {
		return fmt.Errorf("%w: outside service hours %s", ErrGateDenied, e.hours.Service)
	}
	if e.flags.IsEnabled(features.DirectionalTimeRestriction) && destination > origin && !e.hours.UpDirection.Contains(now) {
		return fmt.Errorf("%w: upward travel only allowed %s", ErrGateDenied, e.hours.UpDirection)
	}
	return nil
}

func (e *Engine) setFireAlarm(active bool) {
	var ok bool
	if active {
		ok = e.hw.ActivateFireAlarm()
	} else {
		ok = e.hw.DeactivateFireAlarm()
	}
	if !ok {
		slog.Error("Fire alarm hardware did not respond", "active", active)
	}
	e.fireAlarm = active

	for _, elevator := range e.elevators {
		if elevator.HasIssue {
			continue
		}
		if active {
			forceDescent(elevator)
			continue
		}
		if elevator.State == types.EmergencyStop {
			elevator.Rest()
			destinations := make([]int, 0, len(elevator.Occupants))
			for _, p := range elevator.Occupants {
				destinations = append(destinations, p.Destination)
			}
			elevator.ResetStops(destinations...)
		}
	}
	if active {
		slog.Warn("Fire alarm activated, all elevators descending")
	} else {
		slog.Info("Fire alarm deactivated")
	}
}

func (e *Engine) setIssue(elevatorID int, hasIssue bool) error {
	elevator := e.find(elevatorID)
	if elevator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownElevator, elevatorID)
	}
	if !e.hw.SetIssue(elevatorID, hasIssue) {
		slog.Error("Issue change not confirmed by hardware", "elevator", elevatorID, "hasIssue", hasIssue)
		return fmt.Errorf("%w: set issue on elevator %d", ErrHardware, elevatorID)
	}
	elevator.SetIssue(hasIssue)
	if !hasIssue && e.fireAlarm {
		forceDescent(elevator)
	}
	return nil
}

func (e *Engine) emergencyCall(elevatorID int) error {
	elevator := e.find(elevatorID)
	if elevator == nil {
		return fmt.Errorf("%w: %d", ErrUnknownElevator, elevatorID)
	}
	if !e.hw.ActivateEmergencyCall(elevatorID) {
		slog.Error("Emergency call failed", "elevator", elevatorID)
		return fmt.Errorf("%w: emergency call on elevator %d", ErrHardware, elevatorID)
	}
	elevator.EmergencyCall = true
	slog.Warn("Emergency call active", "elevator", elevatorID, "floor", elevator.Floor)
	return nil
}
