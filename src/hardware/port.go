// Package hardware defines the physical actions the dispatcher can request from a cab.
// Every action reports success or failure; none of them return errors for ordinary
// operational faults.
package hardware

import "github.com/hkaab/elevator.manager/src/types"

type Port interface {
	OpenDoors(elevatorID, floor int) bool
	CloseDoors(elevatorID, floor int) bool
	Move(elevatorID, from, to int, dir types.Direction) bool
	SetIssue(elevatorID int, hasIssue bool) bool
	ActivateFireAlarm() bool
	DeactivateFireAlarm() bool
	PlayMusic(elevatorID int) bool
	StopMusic(elevatorID int) bool
	ActivateEmergencyCall(elevatorID int) bool
	AnnounceFloor(elevatorID, floor int) bool
}

type Op int

const (
	OpOpenDoors Op = iota
	OpCloseDoors
	OpMove
	OpSetIssue
	OpActivateFireAlarm
	OpDeactivateFireAlarm
	OpPlayMusic
	OpStopMusic
	OpEmergencyCall
	OpAnnounceFloor
)

func (op Op) String() string {
	return [...]string{
		"OpenDoors",
		"CloseDoors",
		"Move",
		"SetIssue",
		"ActivateFireAlarm",
		"DeactivateFireAlarm",
		"PlayMusic",
		"StopMusic",
		"EmergencyCall",
		"AnnounceFloor",
	}[op]
}

// Call is one recorded hardware action.
type Call struct {
	Op         Op
	ElevatorID int
	From       int
	To         int
	Flag       bool
	OK         bool
}
