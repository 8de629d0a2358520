package types

import "fmt"

type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

type ElevatorState int

const (
	Idle ElevatorState = iota
	MovingUp
	MovingDown
	OutOfService
	EmergencyStop
)

type ElevatorType int

const (
	Public ElevatorType = iota
	Private
	Service
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	default:
		return "None"
	}
}

func (s ElevatorState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case MovingUp:
		return "MovingUp"
	case MovingDown:
		return "MovingDown"
	case OutOfService:
		return "OutOfService"
	case EmergencyStop:
		return "EmergencyStop"
	}
	return "Unknown"
}

func (t ElevatorType) String() string {
	switch t {
	case Public:
		return "Public"
	case Private:
		return "Private"
	case Service:
		return "Service"
	}
	return "Unknown"
}

func (d Direction) MarshalText() ([]byte, error)     { return []byte(d.String()), nil }
func (s ElevatorState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (t ElevatorType) MarshalText() ([]byte, error)  { return []byte(t.String()), nil }

// Towards returns the direction of travel from one floor to another.
func Towards(from, to int) Direction {
	switch {
	case to > from:
		return DirUp
	case to < from:
		return DirDown
	}
	return DirNone
}

// MovingState maps a direction of travel to the matching operating state.
func MovingState(dir Direction) ElevatorState {
	switch dir {
	case DirUp:
		return MovingUp
	case DirDown:
		return MovingDown
	}
	return Idle
}

// Passenger is a single ride intent. Only InsideCab changes after creation.
type Passenger struct {
	ID            int  `json:"id"`
	Origin        int  `json:"origin"`
	Destination   int  `json:"destination"`
	HasAccessCard bool `json:"has_access_card,omitempty"`
	InsideCab     bool `json:"inside_cab"`
}

// Heading is the direction the passenger wants to travel from their origin.
func (p *Passenger) Heading() Direction {
	return Towards(p.Origin, p.Destination)
}

func (p *Passenger) String() string {
	return fmt.Sprintf("P-%d (%d->%d)", p.ID, p.Origin, p.Destination)
}
