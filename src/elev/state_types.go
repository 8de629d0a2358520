// State types are defined in elev package to make method receivers possible in elev_state.go.
package elev

import "github.com/hkaab/elevator.manager/src/types"

// Elevator represents the state of one cab.
type Elevator struct {
	ID            int                 `json:"id"`
	Type          types.ElevatorType  `json:"type"`
	Capacity      int                 `json:"capacity"`
	Floor         int                 `json:"floor"`
	Dir           types.Direction     `json:"direction"`
	State         types.ElevatorState `json:"state"`
	Occupants     []*types.Passenger  `json:"occupants"`
	StopRequests  []int               `json:"stop_requests"`
	HasIssue      bool                `json:"has_issue"`
	HasMusic      bool                `json:"has_music"`
	HasSpeaker    bool                `json:"has_speaker"`
	MusicPlaying  bool                `json:"music_playing"`
	EmergencyCall bool                `json:"emergency_call"`
}

// Features are the fixed capabilities a cab is built with.
type Features struct {
	HasMusic   bool
	HasSpeaker bool
}

// NewElevator creates an idle cab at the ground floor.
func NewElevator(id int, elevType types.ElevatorType, capacity int, features Features) *Elevator {
	return &Elevator{
		ID:           id,
		Type:         elevType,
		Capacity:     capacity,
		Dir:          types.DirNone,
		State:        types.Idle,
		Occupants:    []*types.Passenger{},
		StopRequests: []int{},
		HasMusic:     features.HasMusic,
		HasSpeaker:   features.HasSpeaker,
	}
}

// Available reports whether the cab may be handed a new summon.
func (e *Elevator) Available() bool {
	return e.State != types.OutOfService && e.State != types.EmergencyStop && !e.IsFull()
}
